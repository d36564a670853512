package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/storage"
)

const (
	receiptCurrency     = "USD"
	receiptOrganization = "HavenWelfare"
	receiptMessage      = "Thank you for your generous donation. Your contribution helps support rehabilitation and recovery programs."

	// MaxDonationAmount caps a single donation so sums stay finite.
	MaxDonationAmount = 1e12
)

type DonationService struct {
	donations repository.DonationRepository
	users     repository.UserRepository
	uploads   storage.Uploads
	audit     Auditor
	notify    Notifications
	now       Clock
}

func NewDonationService(repos *repository.Repositories, uploads storage.Uploads, auditor Auditor, notifier Notifications) *DonationService {
	return &DonationService{
		donations: repos.Donations,
		users:     repos.Users,
		uploads:   uploads,
		audit:     auditor,
		notify:    notifier,
		now:       utcNow,
	}
}

// Submit records a public donation against an approved patient. The
// patient's name is copied onto the donation and never refreshed.
func (s *DonationService) Submit(ctx context.Context, req *dto.SubmitDonationRequest, screenshot *multipart.FileHeader) (*models.Donation, error) {
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	patient, err := s.approvedPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	var screenshotURL *string
	if screenshot != nil {
		url, err := s.uploads.Save(screenshot, "donation")
		if err != nil {
			return nil, err
		}
		screenshotURL = &url
	}

	donation := &models.Donation{
		PatientID:     patient.ID,
		PatientName:   patient.Name,
		Amount:        req.Amount,
		TransactionID: strings.TrimSpace(req.TransactionID),
		DonorName:     strOrNil(strings.TrimSpace(req.DonorName)),
		DonorEmail:    strOrNil(strings.TrimSpace(req.DonorEmail)),
		DonorPhone:    strOrNil(strings.TrimSpace(req.DonorPhone)),
		ScreenshotURL: screenshotURL,
		Status:        models.DonationSubmitted,
		CreatedAt:     s.now(),
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.audit.Record(audit.Entry{
		ActorEmail: derefOr(donation.DonorEmail, "anonymous"),
		Action:     audit.DonationSubmitted,
		Details:    fmt.Sprintf("Amount: %v, Patient: %s", donation.Amount, patient.Name),
	})
	return donation, nil
}

func (s *DonationService) approvedPatient(ctx context.Context, rawID string) (*models.User, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrPatientNotEligible
	}
	patient, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotEligible
		}
		return nil, err
	}
	if patient.Role != models.RolePatient || patient.Status != models.UserApproved {
		return nil, ErrPatientNotEligible
	}
	return patient, nil
}

// Review moves a donation to approved or rejected. Concurrent reviews are
// last-write-wins.
func (s *DonationService) Review(ctx context.Context, id *auth.Identity, rawID string, req *dto.DonationReviewRequest) (*models.Donation, error) {
	if err := auth.Authorize(id, auth.ReviewDonations); err != nil {
		return nil, err
	}
	status := models.DonationStatus(req.Status)
	if status != models.DonationApproved && status != models.DonationRejected {
		return nil, ErrInvalidReview
	}

	donation, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.donations.UpdateStatus(ctx, donation.ID, status, req.AdminRemarks, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("update donation status: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.DonationReviewed(status), "Donation ID: "+donation.ID.String()))
	s.notify.DonationStatus(donation, status, req.AdminRemarks)

	return s.load(ctx, rawID)
}

// List scopes patients to their own donations; admins see every donation.
func (s *DonationService) List(ctx context.Context, id *auth.Identity, status models.DonationStatus) ([]models.Donation, error) {
	if err := auth.AuthorizeAny(id, auth.ViewAllDonations, auth.ViewOwnDonations); err != nil {
		return nil, ErrAccessDenied
	}

	filter := repository.DonationFilter{Status: status}
	if !auth.Can(id.Role, auth.ViewAllDonations) {
		filter.PatientID = &id.ID
	}
	donations, err := s.donations.List(ctx, filter, 0)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}

func (s *DonationService) Get(ctx context.Context, id *auth.Identity, rawID string) (*models.Donation, error) {
	if err := auth.AuthorizeAny(id, auth.ViewAllDonations, auth.ViewOwnDonations); err != nil {
		return nil, ErrAccessDenied
	}
	donation, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(id.Role, auth.ViewAllDonations) && donation.PatientID != id.ID {
		return nil, ErrAccessDenied
	}
	return donation, nil
}

// Track looks a donation up by its transaction id. Transaction ids are not
// unique; any match is returned.
func (s *DonationService) Track(ctx context.Context, transactionID string) (*dto.TrackResponse, error) {
	donation, err := s.donations.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &dto.TrackResponse{
		DonationID:    donation.ID,
		TransactionID: donation.TransactionID,
		Amount:        donation.Amount,
		Status:        donation.Status,
		CreatedAt:     donation.CreatedAt,
		AdminRemarks:  donation.AdminRemarks,
	}, nil
}

// Receipt is built on demand for approved donations only.
func (s *DonationService) Receipt(ctx context.Context, rawID string) (*dto.ReceiptResponse, error) {
	donation, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if donation.Status != models.DonationApproved {
		return nil, ErrReceiptNotAvailable
	}

	patientName := donation.PatientName
	if patient, err := s.users.GetByID(ctx, donation.PatientID); err == nil {
		patientName = patient.Name
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if patientName == "" {
		patientName = "Unknown"
	}

	approvedAt := donation.CreatedAt
	if donation.UpdatedAt != nil {
		approvedAt = *donation.UpdatedAt
	}

	return &dto.ReceiptResponse{
		ReceiptNumber:       ReceiptNumber(donation.ID),
		DonationID:          donation.ID,
		TransactionID:       donation.TransactionID,
		Amount:              donation.Amount,
		Currency:            receiptCurrency,
		DonorName:           derefOr(donation.DonorName, "Anonymous"),
		DonorEmail:          derefOr(donation.DonorEmail, "Not provided"),
		PatientName:         patientName,
		DonationDate:        donation.CreatedAt,
		ApprovalDate:        approvedAt,
		Status:              "Approved",
		Organization:        receiptOrganization,
		OrganizationMessage: receiptMessage,
	}, nil
}

// ReceiptNumber is HW- followed by the first eight characters of the id.
func ReceiptNumber(id uuid.UUID) string {
	return "HW-" + strings.ToUpper(id.String()[:8])
}

func (s *DonationService) ListDonatablePatients(ctx context.Context) ([]dto.UserResponse, error) {
	patients, err := s.users.List(ctx, repository.UserFilter{Role: models.RolePatient, Status: models.UserApproved})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return dto.NewUserResponses(patients), nil
}

func (s *DonationService) load(ctx context.Context, rawID string) (*models.Donation, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrDonationNotFound
	}
	donation, err := s.donations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return donation, nil
}

// validAmount rejects NaN, infinities, non-positive and oversized amounts.
func validAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0 && amount <= MaxDonationAmount
}
