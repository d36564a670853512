package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/models"
)

// SubmitDonationRequest arrives as multipart form fields next to an optional
// "screenshot" file.
type SubmitDonationRequest struct {
	PatientID     string  `json:"patient_id" form:"patient_id" validate:"required,uuid"`
	Amount        float64 `json:"amount" form:"amount" validate:"gt=0,lte=1000000000000"`
	TransactionID string  `json:"transaction_id" form:"transaction_id" validate:"required,max=255"`
	DonorName     string  `json:"donor_name" form:"donor_name" validate:"omitempty,max=255"`
	DonorEmail    string  `json:"donor_email" form:"donor_email" validate:"omitempty,email"`
	DonorPhone    string  `json:"donor_phone" form:"donor_phone" validate:"omitempty,max=50"`
}

type DonationReviewRequest struct {
	Status       string  `json:"status" validate:"required"`
	AdminRemarks *string `json:"admin_remarks"`
}

type TrackResponse struct {
	DonationID    uuid.UUID             `json:"donation_id"`
	TransactionID string                `json:"transaction_id"`
	Amount        float64               `json:"amount"`
	Status        models.DonationStatus `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
	AdminRemarks  *string               `json:"admin_remarks"`
}

type ReceiptResponse struct {
	ReceiptNumber       string    `json:"receipt_number"`
	DonationID          uuid.UUID `json:"donation_id"`
	TransactionID       string    `json:"transaction_id"`
	Amount              float64   `json:"amount"`
	Currency            string    `json:"currency"`
	DonorName           string    `json:"donor_name"`
	DonorEmail          string    `json:"donor_email"`
	PatientName         string    `json:"patient_name"`
	DonationDate        time.Time `json:"donation_date"`
	ApprovalDate        time.Time `json:"approval_date"`
	Status              string    `json:"status"`
	Organization        string    `json:"organization"`
	OrganizationMessage string    `json:"organization_message"`
}
