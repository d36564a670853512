package models

import (
	"time"

	"github.com/google/uuid"
)

type TreatmentStatus string

const (
	TreatmentPending  TreatmentStatus = "pending"
	TreatmentAccepted TreatmentStatus = "accepted"
	TreatmentRejected TreatmentStatus = "rejected"
)

// TreatmentRequest keeps name snapshots taken at creation time; they are not
// refreshed when the referenced records change.
type TreatmentRequest struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientName       string          `gorm:"size:255" json:"patient_name"`
	DoctorID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DoctorName        string          `gorm:"size:255" json:"doctor_name"`
	RehabCenterID     uuid.UUID       `gorm:"type:uuid;not null" json:"rehab_center_id"`
	RehabCenterName   string          `gorm:"size:255" json:"rehab_center_name"`
	AddictionTypeID   uuid.UUID       `gorm:"type:uuid;not null" json:"addiction_type_id"`
	AddictionTypeName string          `gorm:"size:255" json:"addiction_type_name"`
	Description       *string         `gorm:"type:text" json:"description"`
	Status            TreatmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TreatmentNotes    *string         `gorm:"type:text" json:"treatment_notes"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt         *time.Time      `gorm:"autoUpdateTime:false" json:"updated_at"`
}
