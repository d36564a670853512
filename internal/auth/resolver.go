package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
)

var (
	ErrUserNotFound     = apperr.Unauthorized("User not found")
	ErrAccountSuspended = apperr.Forbidden("Account suspended")
)

// Resolver turns a verified token subject into an Identity.
type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve loads the user behind id. Suspended accounts are refused for every
// role, so a token issued before suspension stops working immediately.
func (r *Resolver) Resolve(ctx context.Context, id uuid.UUID) (*Identity, error) {
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Status == models.UserSuspended {
		return nil, ErrAccountSuspended
	}
	return IdentityOf(user), nil
}

func IdentityOf(user *models.User) *Identity {
	return &Identity{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Status: user.Status,
	}
}
