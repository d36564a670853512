package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

// RegistryService manages rehab centers and addiction types.
type RegistryService struct {
	centers repository.RehabCenterRepository
	types   repository.AddictionTypeRepository
	audit   Auditor
}

func NewRegistryService(repos *repository.Repositories, auditor Auditor) *RegistryService {
	return &RegistryService{
		centers: repos.RehabCenters,
		types:   repos.AddictionTypes,
		audit:   auditor,
	}
}

func centerFromRequest(req *dto.RehabCenterRequest) *models.RehabCenter {
	facilities := datatypes.JSONSlice[string]{}
	if req.Facilities != nil {
		facilities = datatypes.JSONSlice[string](req.Facilities)
	}
	return &models.RehabCenter{
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: req.Description,
		Facilities:  facilities,
	}
}

// CreateRehabCenter stores an admin-authored center directly as approved.
func (s *RegistryService) CreateRehabCenter(ctx context.Context, id *auth.Identity, req *dto.RehabCenterRequest) (*models.RehabCenter, error) {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return nil, err
	}
	center := centerFromRequest(req)
	center.Status = models.CenterApproved
	if err := s.centers.Create(ctx, center); err != nil {
		return nil, fmt.Errorf("create rehab center: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.RehabCenterCreated, center.Name))
	return center, nil
}

// ListRehabCenters lets admins filter by status; everyone else, anonymous
// callers included, only sees approved centers.
func (s *RegistryService) ListRehabCenters(ctx context.Context, id *auth.Identity, status models.RehabCenterStatus) ([]models.RehabCenter, error) {
	if id == nil || !auth.Can(id.Role, auth.ViewAllRehabCenters) {
		status = models.CenterApproved
	}
	centers, err := s.centers.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list rehab centers: %w", err)
	}
	if centers == nil {
		centers = []models.RehabCenter{}
	}
	return centers, nil
}

func (s *RegistryService) GetRehabCenter(ctx context.Context, id *auth.Identity, rawID string) (*models.RehabCenter, error) {
	center, err := s.loadCenter(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if center.Status != models.CenterApproved && (id == nil || !auth.Can(id.Role, auth.ViewAllRehabCenters)) {
		return nil, ErrRehabCenterNotFound
	}
	return center, nil
}

// UpdateRehabCenter replaces every editable field. Status is kept.
func (s *RegistryService) UpdateRehabCenter(ctx context.Context, id *auth.Identity, rawID string, req *dto.RehabCenterRequest) (*models.RehabCenter, error) {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return nil, err
	}
	existing, err := s.loadCenter(ctx, rawID)
	if err != nil {
		return nil, err
	}

	center := centerFromRequest(req)
	center.ID = existing.ID
	if err := s.centers.Update(ctx, center); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRehabCenterNotFound
		}
		return nil, fmt.Errorf("update rehab center: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.RehabCenterUpdated, center.Name))
	return s.loadCenter(ctx, rawID)
}

func (s *RegistryService) DeleteRehabCenter(ctx context.Context, id *auth.Identity, rawID string) error {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return err
	}
	centerID, err := uuid.Parse(rawID)
	if err != nil {
		return ErrRehabCenterNotFound
	}
	if err := s.centers.Delete(ctx, centerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRehabCenterNotFound
		}
		return fmt.Errorf("delete rehab center: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.RehabCenterDeleted, centerID.String()))
	return nil
}

func (s *RegistryService) loadCenter(ctx context.Context, rawID string) (*models.RehabCenter, error) {
	centerID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrRehabCenterNotFound
	}
	center, err := s.centers.GetByID(ctx, centerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRehabCenterNotFound
		}
		return nil, err
	}
	return center, nil
}

func addictionFromRequest(req *dto.AddictionTypeRequest) *models.AddictionType {
	levels := datatypes.JSONSlice[string]{}
	if req.SeverityLevels != nil {
		levels = datatypes.JSONSlice[string](req.SeverityLevels)
	}
	return &models.AddictionType{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		SeverityLevels: levels,
	}
}

func (s *RegistryService) CreateAddictionType(ctx context.Context, id *auth.Identity, req *dto.AddictionTypeRequest) (*models.AddictionType, error) {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return nil, err
	}
	at := addictionFromRequest(req)
	if err := s.types.Create(ctx, at); err != nil {
		return nil, fmt.Errorf("create addiction type: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.AddictionTypeCreated, at.Name))
	return at, nil
}

func (s *RegistryService) ListAddictionTypes(ctx context.Context) ([]models.AddictionType, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list addiction types: %w", err)
	}
	if types == nil {
		types = []models.AddictionType{}
	}
	return types, nil
}

func (s *RegistryService) UpdateAddictionType(ctx context.Context, id *auth.Identity, rawID string, req *dto.AddictionTypeRequest) (*models.AddictionType, error) {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return nil, err
	}
	typeID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrAddictionTypeNotFound
	}

	at := addictionFromRequest(req)
	at.ID = typeID
	if err := s.types.Update(ctx, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddictionTypeNotFound
		}
		return nil, fmt.Errorf("update addiction type: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.AddictionTypeUpdated, at.Name))

	updated, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RegistryService) DeleteAddictionType(ctx context.Context, id *auth.Identity, rawID string) error {
	if err := auth.Authorize(id, auth.ManageRegistry); err != nil {
		return err
	}
	typeID, err := uuid.Parse(rawID)
	if err != nil {
		return ErrAddictionTypeNotFound
	}
	if err := s.types.Delete(ctx, typeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddictionTypeNotFound
		}
		return fmt.Errorf("delete addiction type: %w", err)
	}
	s.audit.Record(audit.Actor(id.ID, id.Email, audit.AddictionTypeDeleted, typeID.String()))
	return nil
}
