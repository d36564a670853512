package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/storage"
)

// SettingsService owns the payment and SMTP singletons. Updates read the
// current row, overlay the supplied fields and upsert; there is no version
// check, so concurrent admins overwrite each other.
type SettingsService struct {
	settings repository.SettingsRepository
	uploads  storage.Uploads
	audit    Auditor
	now      Clock
}

func NewSettingsService(repos *repository.Repositories, uploads storage.Uploads, auditor Auditor) *SettingsService {
	return &SettingsService{
		settings: repos.Settings,
		uploads:  uploads,
		audit:    auditor,
		now:      utcNow,
	}
}

// current returns the stored row, or an empty one of that kind.
func (s *SettingsService) current(ctx context.Context, kind models.SettingType) (*models.AdminSetting, bool, error) {
	setting, err := s.settings.Get(ctx, kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.AdminSetting{Type: kind}, false, nil
		}
		return nil, false, fmt.Errorf("load %s settings: %w", kind, err)
	}
	return setting, true, nil
}

// Payment returns nil when nothing has been configured yet.
func (s *SettingsService) Payment(ctx context.Context, id *auth.Identity) (*models.AdminSetting, error) {
	if err := auth.Authorize(id, auth.ManageSettings); err != nil {
		return nil, err
	}
	setting, found, err := s.current(ctx, models.SettingPayment)
	if err != nil || !found {
		return nil, err
	}
	return setting, nil
}

func (s *SettingsService) UpdatePayment(ctx context.Context, id *auth.Identity, req *dto.PaymentSettingsRequest) error {
	if err := auth.Authorize(id, auth.ManageSettings); err != nil {
		return err
	}
	setting, _, err := s.current(ctx, models.SettingPayment)
	if err != nil {
		return err
	}

	overlay(&setting.BankName, req.BankName)
	overlay(&setting.AccountNumber, req.AccountNumber)
	overlay(&setting.IFSCCode, req.IFSCCode)
	overlay(&setting.AccountHolderName, req.AccountHolderName)
	overlay(&setting.UPIID, req.UPIID)

	if err := s.save(ctx, setting); err != nil {
		return err
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.PaymentSettingsUpdated, ""))
	return nil
}

func (s *SettingsService) UploadQRCode(ctx context.Context, id *auth.Identity, file *multipart.FileHeader) (*dto.QRCodeResponse, error) {
	if err := auth.Authorize(id, auth.ManageSettings); err != nil {
		return nil, err
	}
	url, err := s.uploads.Save(file, "qr_code")
	if err != nil {
		return nil, err
	}

	setting, _, err := s.current(ctx, models.SettingPayment)
	if err != nil {
		return nil, err
	}
	setting.QRCodeURL = &url
	if err := s.save(ctx, setting); err != nil {
		return nil, err
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.QRCodeUploaded, ""))
	return &dto.QRCodeResponse{QRCodeURL: url}, nil
}

// SMTP returns the SMTP row with the provider key masked, or nil when
// nothing has been configured yet.
func (s *SettingsService) SMTP(ctx context.Context, id *auth.Identity) (*models.AdminSetting, error) {
	if err := auth.Authorize(id, auth.ManageSettings); err != nil {
		return nil, err
	}
	setting, found, err := s.current(ctx, models.SettingSMTP)
	if err != nil || !found {
		return nil, err
	}
	if setting.SendGridAPIKey != nil {
		masked := MaskSecret(*setting.SendGridAPIKey)
		setting.SendGridAPIKey = &masked
	}
	return setting, nil
}

func (s *SettingsService) UpdateSMTP(ctx context.Context, id *auth.Identity, req *dto.SMTPSettingsRequest) error {
	if err := auth.Authorize(id, auth.ManageSettings); err != nil {
		return err
	}
	setting, _, err := s.current(ctx, models.SettingSMTP)
	if err != nil {
		return err
	}

	overlay(&setting.SendGridAPIKey, req.SendGridAPIKey)
	overlay(&setting.SenderEmail, req.SenderEmail)
	overlay(&setting.SenderName, req.SenderName)

	if err := s.save(ctx, setting); err != nil {
		return err
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.SMTPSettingsUpdated, ""))
	return nil
}

// PaymentInfo is the public projection of the payment settings. ok is false
// when none are configured.
func (s *SettingsService) PaymentInfo(ctx context.Context) (info *dto.PaymentInfoResponse, ok bool, err error) {
	setting, found, err := s.current(ctx, models.SettingPayment)
	if err != nil || !found {
		return nil, false, err
	}
	return &dto.PaymentInfoResponse{
		BankName:          setting.BankName,
		AccountNumber:     setting.AccountNumber,
		IFSCCode:          setting.IFSCCode,
		AccountHolderName: setting.AccountHolderName,
		UPIID:             setting.UPIID,
		QRCodeURL:         setting.QRCodeURL,
	}, true, nil
}

func (s *SettingsService) save(ctx context.Context, setting *models.AdminSetting) error {
	setting.UpdatedAt = s.now()
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return fmt.Errorf("save %s settings: %w", setting.Type, err)
	}
	return nil
}

func overlay(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// MaskSecret keeps the first 8 and last 4 characters of keys longer than 12.
func MaskSecret(key string) string {
	if len(key) > 12 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return "***"
}
