package dto

import "github.com/havenwelfare/haven-backend/internal/models"

// UserWithHistoryResponse adds donation enrichment for patients. For every
// other role both fields are null.
type UserWithHistoryResponse struct {
	UserResponse
	DonationHistory []models.Donation `json:"donation_history"`
	TotalDonations  *float64          `json:"total_donations"`
}

type UserStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AnalyticsResponse struct {
	TotalUsers        int64             `json:"total_users"`
	TotalDoctors      int64             `json:"total_doctors"`
	TotalPatients     int64             `json:"total_patients"`
	TotalDonors       int64             `json:"total_donors"`
	TotalDonations    float64           `json:"total_donations"`
	PendingApprovals  int64             `json:"pending_approvals"`
	TotalRehabCenters int64             `json:"total_rehab_centers"`
	RecentDonations   []models.Donation `json:"recent_donations"`
}

// Settings updates only touch the fields that are present.
type PaymentSettingsRequest struct {
	BankName          *string `json:"bank_name" validate:"omitempty,max=255"`
	AccountNumber     *string `json:"account_number" validate:"omitempty,max=100"`
	IFSCCode          *string `json:"ifsc_code" validate:"omitempty,max=50"`
	AccountHolderName *string `json:"account_holder_name" validate:"omitempty,max=255"`
	UPIID             *string `json:"upi_id" validate:"omitempty,max=255"`
}

type SMTPSettingsRequest struct {
	SendGridAPIKey *string `json:"sendgrid_api_key" validate:"omitempty,max=255"`
	SenderEmail    *string `json:"sender_email" validate:"omitempty,email"`
	SenderName     *string `json:"sender_name" validate:"omitempty,max=255"`
}

type QRCodeResponse struct {
	QRCodeURL string `json:"qr_code_url"`
}

type DocumentResponse struct {
	DocumentURL string `json:"document_url"`
}

// PaymentInfoResponse is the public subset of the payment settings.
type PaymentInfoResponse struct {
	BankName          *string `json:"bank_name"`
	AccountNumber     *string `json:"account_number"`
	IFSCCode          *string `json:"ifsc_code"`
	AccountHolderName *string `json:"account_holder_name"`
	UPIID             *string `json:"upi_id"`
	QRCodeURL         *string `json:"qr_code_url"`
}
