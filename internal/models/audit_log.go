package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is append-only. UserID is nil for anonymous actions such as
// public donation submissions.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	UserEmail string     `gorm:"size:255" json:"user_email"`
	Action    string     `gorm:"size:100;not null;index" json:"action"`
	Details   *string    `gorm:"type:text" json:"details"`
	IPAddress *string    `gorm:"size:64" json:"ip_address"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}
