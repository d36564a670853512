package services

import (
	"context"
	"fmt"

	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

const (
	recentDonationsLimit = 5
	defaultAuditLimit    = 100
	maxAuditLimit        = 1000
)

// AnalyticsService serves admin dashboards. Each figure is read separately,
// so one response is not a consistent snapshot.
type AnalyticsService struct {
	users     repository.UserRepository
	donations repository.DonationRepository
	centers   repository.RehabCenterRepository
	auditLogs repository.AuditLogRepository
}

func NewAnalyticsService(repos *repository.Repositories) *AnalyticsService {
	return &AnalyticsService{
		users:     repos.Users,
		donations: repos.Donations,
		centers:   repos.RehabCenters,
		auditLogs: repos.AuditLogs,
	}
}

func (s *AnalyticsService) Summary(ctx context.Context, id *auth.Identity) (*dto.AnalyticsResponse, error) {
	if err := auth.Authorize(id, auth.ViewAnalytics); err != nil {
		return nil, err
	}

	var (
		resp dto.AnalyticsResponse
		err  error
	)
	if resp.TotalUsers, err = s.users.Count(ctx, repository.UserFilter{}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if resp.TotalDoctors, err = s.users.Count(ctx, repository.UserFilter{Role: models.RoleDoctor}); err != nil {
		return nil, fmt.Errorf("count doctors: %w", err)
	}
	if resp.TotalPatients, err = s.users.Count(ctx, repository.UserFilter{Role: models.RolePatient}); err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}
	if resp.TotalDonors, err = s.donations.CountDistinctDonors(ctx); err != nil {
		return nil, fmt.Errorf("count donors: %w", err)
	}
	if resp.TotalDonations, err = s.donations.SumApproved(ctx); err != nil {
		return nil, fmt.Errorf("sum donations: %w", err)
	}

	pendingUsers, err := s.users.Count(ctx, repository.UserFilter{Status: models.UserPending})
	if err != nil {
		return nil, fmt.Errorf("count pending users: %w", err)
	}
	pendingCenters, err := s.centers.Count(ctx, models.CenterPending)
	if err != nil {
		return nil, fmt.Errorf("count pending centers: %w", err)
	}
	resp.PendingApprovals = pendingUsers + pendingCenters

	if resp.TotalRehabCenters, err = s.centers.Count(ctx, models.CenterApproved); err != nil {
		return nil, fmt.Errorf("count rehab centers: %w", err)
	}

	recent, err := s.donations.List(ctx, repository.DonationFilter{}, recentDonationsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent donations: %w", err)
	}
	if recent == nil {
		recent = []models.Donation{}
	}
	resp.RecentDonations = recent
	return &resp, nil
}

// AuditLogs returns the newest entries first. limit defaults to 100 and is
// capped at 1000.
func (s *AnalyticsService) AuditLogs(ctx context.Context, id *auth.Identity, limit int) ([]models.AuditLog, error) {
	if err := auth.Authorize(id, auth.ViewAuditLogs); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	logs, err := s.auditLogs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}
