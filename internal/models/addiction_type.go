package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AddictionType struct {
	ID             uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string                      `gorm:"size:255;not null" json:"name"`
	Description    *string                     `gorm:"type:text" json:"description"`
	SeverityLevels datatypes.JSONSlice[string] `gorm:"type:jsonb;default:'[]'" json:"severity_levels"`
	CreatedAt      time.Time                   `json:"created_at"`
}
