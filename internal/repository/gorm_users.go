package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUsers) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(whereIf("role", filter.Role), whereIf("status", filter.Status), newestFirst).
		Find(&users).Error
	return users, translate(err)
}

func (r *gormUsers) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(whereIf("role", filter.Role), whereIf("status", filter.Status)).
		Count(&n).Error
	return n, translate(err)
}

func (r *gormUsers) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) error {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.ProfileData != nil {
		updates["profile_data"] = datatypes.JSONMap(patch.ProfileData)
	}
	if len(updates) == 0 {
		return nil
	}
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates))
}

func (r *gormUsers) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash))
}

func (r *gormUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("status", status))
}

type gormResetTokens struct {
	db *gorm.DB
}

func (r *gormResetTokens) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(token).Error)
}

func (r *gormResetTokens) Redeem(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ? AND used = ? AND expires_at > ?", tokenHash, false, now).
			First(&token).Error; err != nil {
			return translate(err)
		}

		if err := affected(tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used = ?", token.ID, false).
			Updates(map[string]interface{}{"used": true, "used_at": now})); err != nil {
			return err
		}

		return affected(tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("password", newPasswordHash))
	})
	if err != nil {
		return nil, translate(err)
	}
	token.Used = true
	token.UsedAt = &now
	return &token, nil
}
