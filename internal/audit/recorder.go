// Package audit appends entries to the audit trail in the background.
package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/worker"
)

const (
	UserRegistered          = "USER_REGISTERED"
	UserLogin               = "USER_LOGIN"
	PasswordReset           = "PASSWORD_RESET"
	PasswordChanged         = "PASSWORD_CHANGED"
	ProfileUpdated          = "PROFILE_UPDATED"
	UserStatusUpdated       = "USER_STATUS_UPDATED"
	PaymentSettingsUpdated  = "PAYMENT_SETTINGS_UPDATED"
	SMTPSettingsUpdated     = "SMTP_SETTINGS_UPDATED"
	QRCodeUploaded          = "QR_CODE_UPLOADED"
	RehabCenterCreated      = "REHAB_CENTER_CREATED"
	RehabCenterUpdated      = "REHAB_CENTER_UPDATED"
	RehabCenterDeleted      = "REHAB_CENTER_DELETED"
	AddictionTypeCreated    = "ADDICTION_TYPE_CREATED"
	AddictionTypeUpdated    = "ADDICTION_TYPE_UPDATED"
	AddictionTypeDeleted    = "ADDICTION_TYPE_DELETED"
	DonationSubmitted       = "DONATION_SUBMITTED"
	TreatmentRequestCreated = "TREATMENT_REQUEST_CREATED"
	TreatmentNotesUpdated   = "TREATMENT_NOTES_UPDATED"
	VerificationDocUploaded = "VERIFICATION_DOC_UPLOADED"
	DonationsExported       = "DONATIONS_EXPORTED"
)

// DonationReviewed is DONATION_APPROVED or DONATION_REJECTED.
func DonationReviewed(status models.DonationStatus) string {
	return "DONATION_" + strings.ToUpper(string(status))
}

// TreatmentResponded is TREATMENT_REQUEST_ACCEPTED or TREATMENT_REQUEST_REJECTED.
func TreatmentResponded(status models.TreatmentStatus) string {
	return "TREATMENT_REQUEST_" + strings.ToUpper(string(status))
}

// Entry describes one audited action. ActorID is nil for anonymous callers.
type Entry struct {
	ActorID    *uuid.UUID
	ActorEmail string
	Action     string
	Details    string
	IPAddress  string
}

// Recorder writes entries through a worker so the request never waits on
// the audit table and a failed write is only logged.
type Recorder struct {
	logs    repository.AuditLogRepository
	workers worker.Submitter
}

func NewRecorder(logs repository.AuditLogRepository, workers worker.Submitter) *Recorder {
	return &Recorder{logs: logs, workers: workers}
}

func (r *Recorder) Record(e Entry) {
	row := &models.AuditLog{
		UserID:    e.ActorID,
		UserEmail: e.ActorEmail,
		Action:    e.Action,
		Details:   optional(e.Details),
		IPAddress: optional(e.IPAddress),
	}
	r.workers.Submit(worker.Task{
		Name: "audit:" + e.Action,
		Run: func(ctx context.Context) error {
			if err := r.logs.Append(ctx, row); err != nil {
				return fmt.Errorf("append audit log: %w", err)
			}
			return nil
		},
	})
}

// Actor is a convenience for entries performed by a known user.
func Actor(id uuid.UUID, email, action, details string) Entry {
	return Entry{ActorID: &id, ActorEmail: email, Action: action, Details: details}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
