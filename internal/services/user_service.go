package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/storage"
)

// settableUserStatuses are the values an admin may assign. There is no
// transition table: any of them may follow any other.
var settableUserStatuses = map[models.UserStatus]bool{
	models.UserApproved:  true,
	models.UserRejected:  true,
	models.UserSuspended: true,
	models.UserActive:    true,
}

type UserService struct {
	users     repository.UserRepository
	donations repository.DonationRepository
	uploads   storage.Uploads
	audit     Auditor
	notify    Notifications
}

func NewUserService(repos *repository.Repositories, uploads storage.Uploads, auditor Auditor, notifier Notifications) *UserService {
	return &UserService{
		users:     repos.Users,
		donations: repos.Donations,
		uploads:   uploads,
		audit:     auditor,
		notify:    notifier,
	}
}

// ListUsers returns users matching the filter. Patients carry their whole
// donation history and the sum of their approved donations; both fields are
// null for other roles.
func (s *UserService) ListUsers(ctx context.Context, id *auth.Identity, filter repository.UserFilter) ([]dto.UserWithHistoryResponse, error) {
	if err := auth.Authorize(id, auth.ManageUsers); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var byPatient map[uuid.UUID][]models.Donation
	for i := range users {
		if users[i].Role == models.RolePatient {
			byPatient, err = s.donationsByPatient(ctx)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	out := make([]dto.UserWithHistoryResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		resp := dto.UserWithHistoryResponse{UserResponse: dto.NewUserResponse(u)}
		if u.Role == models.RolePatient {
			history := byPatient[u.ID]
			if history == nil {
				history = []models.Donation{}
			}
			total := approvedTotal(history)
			resp.DonationHistory = history
			resp.TotalDonations = &total
		}
		out = append(out, resp)
	}
	return out, nil
}

// donationsByPatient groups every donation by patient, keeping the
// newest-first order of the repository.
func (s *UserService) donationsByPatient(ctx context.Context) (map[uuid.UUID][]models.Donation, error) {
	all, err := s.donations.List(ctx, repository.DonationFilter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	grouped := make(map[uuid.UUID][]models.Donation)
	for _, d := range all {
		grouped[d.PatientID] = append(grouped[d.PatientID], d)
	}
	return grouped, nil
}

func approvedTotal(donations []models.Donation) float64 {
	var total float64
	for _, d := range donations {
		if d.Status == models.DonationApproved {
			total += d.Amount
		}
	}
	return total
}

// SetStatus overwrites the user's status and mails the user for approved,
// rejected and suspended.
func (s *UserService) SetStatus(ctx context.Context, id *auth.Identity, rawUserID string, req *dto.UserStatusRequest) error {
	if err := auth.Authorize(id, auth.ManageUsers); err != nil {
		return err
	}
	status := models.UserStatus(req.Status)
	if !settableUserStatuses[status] {
		return ErrInvalidStatus
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update user status: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.UserStatusUpdated,
		fmt.Sprintf("User %s status changed to %s", user.Email, status)))
	s.notify.UserStatus(user, status)
	return nil
}

func (s *UserService) ListApprovedDoctors(ctx context.Context) ([]dto.UserResponse, error) {
	doctors, err := s.users.List(ctx, repository.UserFilter{Role: models.RoleDoctor, Status: models.UserApproved})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return dto.NewUserResponses(doctors), nil
}

// UploadVerificationDocument stores the file and appends its URL to the
// doctor's profile_data.verification_documents.
func (s *UserService) UploadVerificationDocument(ctx context.Context, id *auth.Identity, file *multipart.FileHeader) (*dto.DocumentResponse, error) {
	if err := auth.Authorize(id, auth.ManageDoctorProfile); err != nil {
		return nil, err
	}

	url, err := s.uploads.Save(file, "doc_verify_"+id.ID.String())
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	profile := maps.Clone(map[string]any(user.ProfileData))
	if profile == nil {
		profile = map[string]any{}
	}
	profile["verification_documents"] = append(stringList(profile["verification_documents"]), url)

	if err := s.users.UpdateProfile(ctx, user.ID, repository.ProfilePatch{ProfileData: profile}); err != nil {
		return nil, fmt.Errorf("update profile data: %w", err)
	}

	s.audit.Record(audit.Actor(id.ID, id.Email, audit.VerificationDocUploaded, ""))
	return &dto.DocumentResponse{DocumentURL: url}, nil
}

// UpdateDoctorProfileData merges data into the doctor's profile map.
func (s *UserService) UpdateDoctorProfileData(ctx context.Context, id *auth.Identity, data map[string]any) error {
	if err := auth.Authorize(id, auth.ManageDoctorProfile); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		return err
	}
	profile := maps.Clone(map[string]any(user.ProfileData))
	if profile == nil {
		profile = map[string]any{}
	}
	maps.Copy(profile, data)

	if err := s.users.UpdateProfile(ctx, user.ID, repository.ProfilePatch{ProfileData: profile}); err != nil {
		return fmt.Errorf("update profile data: %w", err)
	}
	return nil
}

// stringList reads a JSON array that may have been decoded as []any.
func stringList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, 0, len(list))
		for _, s := range list {
			out = append(out, s)
		}
		return out
	default:
		return []any{}
	}
}
