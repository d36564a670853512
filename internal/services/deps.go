package services

import (
	"time"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/models"
)

// Auditor receives audit entries; *audit.Recorder writes them in the
// background.
type Auditor interface {
	Record(entry audit.Entry)
}

// Notifications is the outbound email surface. Calls return immediately.
type Notifications interface {
	PasswordReset(user *models.User, token string)
	UserStatus(user *models.User, status models.UserStatus)
	DonationStatus(d *models.Donation, status models.DonationStatus, remarks *string)
}

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
