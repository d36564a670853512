package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

type TreatmentService struct {
	treatments     repository.TreatmentRepository
	users          repository.UserRepository
	rehabCenters   repository.RehabCenterRepository
	addictionTypes repository.AddictionTypeRepository
	audit          Auditor
	now            Clock
}

func NewTreatmentService(repos *repository.Repositories, auditor Auditor) *TreatmentService {
	return &TreatmentService{
		treatments:     repos.Treatments,
		users:          repos.Users,
		rehabCenters:   repos.RehabCenters,
		addictionTypes: repos.AddictionTypes,
		audit:          auditor,
		now:            utcNow,
	}
}

// Create files a pending request from the calling patient. Doctor, center
// and addiction type names are copied onto the request.
func (s *TreatmentService) Create(ctx context.Context, id *auth.Identity, req *dto.CreateTreatmentRequest) (*models.TreatmentRequest, error) {
	if err := auth.Authorize(id, auth.RequestTreatment); err != nil {
		return nil, err
	}

	doctor, err := s.approvedDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	center, err := s.approvedCenter(ctx, req.RehabCenterID)
	if err != nil {
		return nil, err
	}
	addiction, err := s.addictionType(ctx, req.AddictionTypeID)
	if err != nil {
		return nil, err
	}

	treatment := &models.TreatmentRequest{
		PatientID:         id.ID,
		PatientName:       id.Name,
		DoctorID:          doctor.ID,
		DoctorName:        doctor.Name,
		RehabCenterID:     center.ID,
		RehabCenterName:   center.Name,
		AddictionTypeID:   addiction.ID,
		AddictionTypeName: addiction.Name,
		Description:       req.Description,
		Status:            models.TreatmentPending,
		CreatedAt:         s.now(),
	}
	if err := s.treatments.Create(ctx, treatment); err != nil {
		return nil, fmt.Errorf("create treatment request: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.TreatmentRequestCreated, treatment.ID.String()))
	return treatment, nil
}

func (s *TreatmentService) approvedDoctor(ctx context.Context, rawID string) (*models.User, error) {
	docID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrDoctorNotEligible
	}
	doctor, err := s.users.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotEligible
		}
		return nil, err
	}
	if doctor.Role != models.RoleDoctor || doctor.Status != models.UserApproved {
		return nil, ErrDoctorNotEligible
	}
	return doctor, nil
}

func (s *TreatmentService) approvedCenter(ctx context.Context, rawID string) (*models.RehabCenter, error) {
	centerID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrRehabCenterNotEligible
	}
	center, err := s.rehabCenters.GetByID(ctx, centerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRehabCenterNotEligible
		}
		return nil, err
	}
	if center.Status != models.CenterApproved {
		return nil, ErrRehabCenterNotEligible
	}
	return center, nil
}

func (s *TreatmentService) addictionType(ctx context.Context, rawID string) (*models.AddictionType, error) {
	typeID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrAddictionTypeNotFound
	}
	at, err := s.addictionTypes.GetByID(ctx, typeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddictionTypeNotFound
		}
		return nil, err
	}
	return at, nil
}

func parseOutcome(raw string) (models.TreatmentStatus, error) {
	switch status := models.TreatmentStatus(raw); status {
	case models.TreatmentAccepted, models.TreatmentRejected:
		return status, nil
	default:
		return "", ErrInvalidResponse
	}
}

// Respond accepts or rejects a pending request assigned to the caller. Any
// other request, including one already answered, is reported as not found.
func (s *TreatmentService) Respond(ctx context.Context, id *auth.Identity, rawID, response string) (models.TreatmentStatus, error) {
	if err := auth.Authorize(id, auth.RespondTreatments); err != nil {
		return "", err
	}
	status, err := parseOutcome(response)
	if err != nil {
		return "", err
	}
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return "", ErrRequestNotFoundForDoctor
	}

	if err := s.treatments.RespondIfPending(ctx, requestID, id.ID, status, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrRequestNotFoundForDoctor
		}
		return "", fmt.Errorf("respond to treatment request: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.TreatmentResponded(status), requestID.String()))
	return status, nil
}

// UpdateNotes stores doctor notes and, when given, the new status.
func (s *TreatmentService) UpdateNotes(ctx context.Context, id *auth.Identity, rawID string, req *dto.TreatmentNotesRequest) error {
	if err := auth.Authorize(id, auth.RespondTreatments); err != nil {
		return err
	}
	var status *models.TreatmentStatus
	if req.Status != nil && *req.Status != "" {
		st, err := parseOutcome(*req.Status)
		if err != nil {
			return err
		}
		status = &st
	}
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return ErrRequestNotFoundForDoctor
	}

	if err := s.treatments.UpdateNotes(ctx, requestID, id.ID, req.TreatmentNotes, status, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFoundForDoctor
		}
		return fmt.Errorf("update treatment notes: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.TreatmentNotesUpdated, requestID.String()))
	return nil
}

// List scopes patients to their own requests and doctors to assigned ones.
// Doctor and admin viewers also get each patient's current profile data.
func (s *TreatmentService) List(ctx context.Context, id *auth.Identity, status models.TreatmentStatus) ([]dto.TreatmentResponse, error) {
	filter := repository.TreatmentFilter{Status: status}
	enrich := true
	switch {
	case auth.Can(id.Role, auth.ViewAllTreatments):
	case auth.Can(id.Role, auth.ViewAssignedTreatments):
		filter.DoctorID = &id.ID
	case auth.Can(id.Role, auth.ViewOwnTreatments):
		filter.PatientID = &id.ID
		enrich = false
	default:
		return nil, ErrAccessDenied
	}

	requests, err := s.treatments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list treatment requests: %w", err)
	}

	profiles := make(map[uuid.UUID]map[string]any)
	out := make([]dto.TreatmentResponse, 0, len(requests))
	for _, r := range requests {
		resp := dto.TreatmentResponse{TreatmentRequest: r}
		if enrich {
			profile, err := s.patientProfile(ctx, r.PatientID, profiles)
			if err != nil {
				return nil, err
			}
			resp.PatientProfileData = profile
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *TreatmentService) patientProfile(ctx context.Context, patientID uuid.UUID, cache map[uuid.UUID]map[string]any) (map[string]any, error) {
	if profile, ok := cache[patientID]; ok {
		return profile, nil
	}
	var profile map[string]any
	patient, err := s.users.GetByID(ctx, patientID)
	switch {
	case err == nil:
		profile = map[string]any(patient.ProfileData)
		if profile == nil {
			profile = map[string]any{}
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	cache[patientID] = profile
	return profile, nil
}
