package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

type UserStatus string

const (
	UserPending   UserStatus = "pending"
	UserApproved  UserStatus = "approved"
	UserRejected  UserStatus = "rejected"
	UserSuspended UserStatus = "suspended"
	// UserActive is accepted by the admin status endpoint and behaves like
	// approved at login.
	UserActive UserStatus = "active"
)

// User is shared by every role; role-specific details live in ProfileData.
type User struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string            `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name        string            `gorm:"not null;size:255" json:"name"`
	Phone       *string           `gorm:"size:50" json:"phone"`
	Password    string            `gorm:"not null" json:"-"`
	Role        Role              `gorm:"size:20;not null;index" json:"role"`
	Status      UserStatus        `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ProfileData datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"profile_data"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ProfileData == nil {
		u.ProfileData = datatypes.JSONMap{}
	}
	return nil
}
