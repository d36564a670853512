package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RehabCenterStatus string

const (
	CenterPending  RehabCenterStatus = "pending"
	CenterApproved RehabCenterStatus = "approved"
	CenterRejected RehabCenterStatus = "rejected"
)

type RehabCenter struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Address     string                      `gorm:"size:500" json:"address"`
	City        string                      `gorm:"size:100" json:"city"`
	State       string                      `gorm:"size:100" json:"state"`
	Pincode     string                      `gorm:"size:20" json:"pincode"`
	Phone       string                      `gorm:"size:50" json:"phone"`
	Email       *string                     `gorm:"size:255" json:"email"`
	Description *string                     `gorm:"type:text" json:"description"`
	Facilities  datatypes.JSONSlice[string] `gorm:"type:jsonb;default:'[]'" json:"facilities"`
	Status      RehabCenterStatus           `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
