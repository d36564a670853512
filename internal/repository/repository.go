// Package repository is the persistence boundary. Every service reads and
// writes through these interfaces; implementations exist for Postgres (gorm)
// and for process memory.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable wraps failures to reach the database. It surfaces to
	// clients as 503.
	ErrUnavailable = apperr.Unavailable("Service temporarily unavailable")
)

type UserFilter struct {
	Role   models.Role
	Status models.UserStatus
}

// ProfilePatch is a partial user update. Nil fields are left untouched and
// ProfileData replaces the stored map (callers merge beforehand).
type ProfilePatch struct {
	Name        *string
	Phone       *string
	Email       *string
	ProfileData map[string]any
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// Redeem marks the unused, unexpired token as used and stores the new
	// password hash for its owner in one atomic step.
	Redeem(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.PasswordResetToken, error)
}

type DonationFilter struct {
	PatientID *uuid.UUID
	Status    models.DonationStatus
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Donation, error)
	// List returns donations newest first. limit <= 0 means no limit.
	List(ctx context.Context, filter DonationFilter, limit int) ([]models.Donation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus, remarks *string, at time.Time) error
	SumApproved(ctx context.Context) (float64, error)
	CountDistinctDonors(ctx context.Context) (int64, error)
}

type TreatmentFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    models.TreatmentStatus
}

type TreatmentRepository interface {
	Create(ctx context.Context, req *models.TreatmentRequest) error
	List(ctx context.Context, filter TreatmentFilter) ([]models.TreatmentRequest, error)
	// RespondIfPending moves a pending request owned by doctorID to status.
	// It returns ErrNotFound when no such pending request exists.
	RespondIfPending(ctx context.Context, id, doctorID uuid.UUID, status models.TreatmentStatus, at time.Time) error
	UpdateNotes(ctx context.Context, id, doctorID uuid.UUID, notes string, status *models.TreatmentStatus, at time.Time) error
}

type RehabCenterRepository interface {
	Create(ctx context.Context, center *models.RehabCenter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RehabCenter, error)
	List(ctx context.Context, status models.RehabCenterStatus) ([]models.RehabCenter, error)
	Count(ctx context.Context, status models.RehabCenterStatus) (int64, error)
	Update(ctx context.Context, center *models.RehabCenter) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AddictionTypeRepository interface {
	Create(ctx context.Context, at *models.AddictionType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AddictionType, error)
	List(ctx context.Context) ([]models.AddictionType, error)
	Update(ctx context.Context, at *models.AddictionType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AuditLogRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	// Recent returns the newest entries first.
	Recent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, kind models.SettingType) (*models.AdminSetting, error)
	// Upsert writes the whole row keyed by its Type.
	Upsert(ctx context.Context, setting *models.AdminSetting) error
}

type SystemLogRepository interface {
	InsertBatch(ctx context.Context, logs []models.SystemLog) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repositories bundles every repository of one backend.
type Repositories struct {
	Users          UserRepository
	ResetTokens    PasswordResetRepository
	Donations      DonationRepository
	Treatments     TreatmentRepository
	RehabCenters   RehabCenterRepository
	AddictionTypes AddictionTypeRepository
	AuditLogs      AuditLogRepository
	Settings       SettingsRepository
	SystemLogs     SystemLogRepository

	// Ping reports whether the backing store is reachable.
	Ping func(ctx context.Context) error
}
