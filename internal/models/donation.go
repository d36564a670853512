package models

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationSubmitted   DonationStatus = "submitted"
	DonationUnderReview DonationStatus = "under_review"
	DonationApproved    DonationStatus = "approved"
	DonationRejected    DonationStatus = "rejected"
)

type Donation struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PatientID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientName   string         `gorm:"size:255" json:"patient_name"`
	Amount        float64        `gorm:"not null" json:"amount"`
	TransactionID string         `gorm:"size:255;not null;index" json:"transaction_id"`
	DonorName     *string        `gorm:"size:255" json:"donor_name"`
	DonorEmail    *string        `gorm:"size:255;index" json:"donor_email"`
	DonorPhone    *string        `gorm:"size:50" json:"donor_phone"`
	ScreenshotURL *string        `gorm:"size:500" json:"screenshot_url"`
	Status        DonationStatus `gorm:"size:20;not null;default:'submitted';index" json:"status"`
	AdminRemarks  *string        `gorm:"type:text" json:"admin_remarks"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     *time.Time     `gorm:"autoUpdateTime:false" json:"updated_at"`
}
