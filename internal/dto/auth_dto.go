package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Role     string  `json:"role" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest is a partial update; ProfileData is merged key by key
// into the stored map.
type UpdateProfileRequest struct {
	Name        *string        `json:"name" validate:"omitempty,max=255"`
	Phone       *string        `json:"phone" validate:"omitempty,max=50"`
	Email       *string        `json:"email" validate:"omitempty,email"`
	ProfileData map[string]any `json:"profile_data"`
}

type UserResponse struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Phone       *string           `json:"phone"`
	Role        models.Role       `json:"role"`
	Status      models.UserStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	ProfileData map[string]any    `json:"profile_data"`
}

func NewUserResponse(u *models.User) UserResponse {
	profile := map[string]any(u.ProfileData)
	if profile == nil {
		profile = map[string]any{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		ProfileData: profile,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
