package models

import (
	"time"

	"github.com/google/uuid"
)

type SettingType string

const (
	SettingPayment SettingType = "payment"
	SettingSMTP    SettingType = "smtp"
)

// AdminSetting is a singleton row per Type. Payment rows use the bank/UPI
// columns, SMTP rows use the SendGrid columns.
type AdminSetting struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	Type              SettingType `gorm:"size:20;not null;uniqueIndex" json:"type"`
	BankName          *string     `gorm:"size:255" json:"bank_name,omitempty"`
	AccountNumber     *string     `gorm:"size:100" json:"account_number,omitempty"`
	IFSCCode          *string     `gorm:"column:ifsc_code;size:50" json:"ifsc_code,omitempty"`
	AccountHolderName *string     `gorm:"size:255" json:"account_holder_name,omitempty"`
	UPIID             *string     `gorm:"column:upi_id;size:255" json:"upi_id,omitempty"`
	QRCodeURL         *string     `gorm:"column:qr_code_url;size:500" json:"qr_code_url,omitempty"`
	SendGridAPIKey    *string     `gorm:"column:sendgrid_api_key;size:255" json:"sendgrid_api_key,omitempty"`
	SenderEmail       *string     `gorm:"size:255" json:"sender_email,omitempty"`
	SenderName        *string     `gorm:"size:255" json:"sender_name,omitempty"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
