package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/havenwelfare/haven-backend/internal/audit"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

type AuthService struct {
	users       repository.UserRepository
	resetTokens repository.PasswordResetRepository
	hasher      auth.PasswordHasher
	tokens      *auth.TokenIssuer
	audit       Auditor
	notify      Notifications
	resetTTL    time.Duration
	now         Clock
}

func NewAuthService(
	repos *repository.Repositories,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	auditor Auditor,
	notifier Notifications,
	resetTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       repos.Users,
		resetTokens: repos.ResetTokens,
		hasher:      hasher,
		tokens:      tokens,
		audit:       auditor,
		notify:      notifier,
		resetTTL:    resetTTL,
		now:         utcNow,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedAdmin creates the bootstrap admin unless an account with that email
// already exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:       email,
		Name:        name,
		Password:    hash,
		Role:        models.RoleAdmin,
		Status:      models.UserApproved,
		ProfileData: map[string]any{},
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}
	slog.Info("admin account seeded", "email", email)
	return nil
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	role := models.Role(req.Role)
	if role != models.RoleDoctor && role != models.RolePatient {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(req.Email)
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		Password:    hash,
		Role:        role,
		Status:      models.UserPending,
		ProfileData: map[string]any{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(audit.Actor(user.ID, user.Email, audit.UserRegistered, ""))
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Login walks the credential and account-status checks in order. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	switch {
	case user.Status == models.UserSuspended:
		return nil, auth.ErrAccountSuspended
	case user.Status == models.UserPending && user.Role != models.RoleAdmin:
		return nil, ErrAccountPending
	case user.Status == models.UserRejected:
		return nil, ErrAccountRejected
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	entry := audit.Actor(user.ID, user.Email, audit.UserLogin, "")
	entry.IPAddress = ip
	s.audit.Record(entry)

	return &dto.LoginResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// ForgotPassword mints a reset token when the email is registered. Callers
// answer with the same message either way.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}
	now := s.now()
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resetTokens.Create(ctx, record); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.notify.PasswordReset(user, raw)
	return nil
}

// ResetPassword redeems the token and stores the new hash in one step, so a
// token can never be replayed after a successful reset.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	token, err := s.resetTokens.Redeem(ctx, hashToken(req.Token), hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return fmt.Errorf("redeem reset token: %w", err)
	}

	email := ""
	if user, err := s.users.GetByID(ctx, token.UserID); err == nil {
		email = user.Email
	}
	s.audit.Record(audit.Actor(token.UserID, email, audit.PasswordReset, ""))
	return nil
}

func (s *AuthService) Me(ctx context.Context, id *auth.Identity) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies the non-empty fields of req. Profile data is merged
// into the stored map, never replaced.
func (s *AuthService) UpdateProfile(ctx context.Context, id *auth.Identity, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var patch repository.ProfilePatch
	changed := false
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
		changed = true
	}
	if req.Phone != nil && *req.Phone != "" {
		patch.Phone = req.Phone
		changed = true
	}
	if req.Email != nil {
		if email := normalizeEmail(*req.Email); email != "" && email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, ErrEmailInUse
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			patch.Email = &email
			changed = true
		}
	}
	if req.ProfileData != nil {
		merged := maps.Clone(map[string]any(user.ProfileData))
		if merged == nil {
			merged = map[string]any{}
		}
		maps.Copy(merged, req.ProfileData)
		patch.ProfileData = merged
		changed = true
	}

	if changed {
		if err := s.users.UpdateProfile(ctx, user.ID, patch); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrEmailInUse
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
		s.audit.Record(audit.Actor(user.ID, user.Email, audit.ProfileUpdated, ""))
	}

	return s.Me(ctx, id)
}

func (s *AuthService) ChangePassword(ctx context.Context, id *auth.Identity, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.hasher.Verify(user.Password, req.CurrentPassword) {
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(audit.Actor(user.ID, user.Email, audit.PasswordChanged, ""))
	return nil
}

func newResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
