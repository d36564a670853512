package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type gormRehabCenters struct {
	db *gorm.DB
}

func (r *gormRehabCenters) Create(ctx context.Context, center *models.RehabCenter) error {
	if center.ID == uuid.Nil {
		center.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(center).Error)
}

func (r *gormRehabCenters) GetByID(ctx context.Context, id uuid.UUID) (*models.RehabCenter, error) {
	var c models.RehabCenter
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormRehabCenters) List(ctx context.Context, status models.RehabCenterStatus) ([]models.RehabCenter, error) {
	var centers []models.RehabCenter
	err := r.db.WithContext(ctx).Scopes(whereIf("status", status)).Order("name ASC").Find(&centers).Error
	return centers, translate(err)
}

func (r *gormRehabCenters) Count(ctx context.Context, status models.RehabCenterStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.RehabCenter{}).Scopes(whereIf("status", status)).Count(&n).Error
	return n, translate(err)
}

func (r *gormRehabCenters) Update(ctx context.Context, center *models.RehabCenter) error {
	return affected(r.db.WithContext(ctx).Model(&models.RehabCenter{}).
		Where("id = ?", center.ID).
		Select("name", "address", "city", "state", "pincode", "phone", "email", "description", "facilities", "updated_at").
		Updates(center))
}

func (r *gormRehabCenters) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.RehabCenter{}, "id = ?", id))
}

type gormAddictionTypes struct {
	db *gorm.DB
}

func (r *gormAddictionTypes) Create(ctx context.Context, at *models.AddictionType) error {
	if at.ID == uuid.Nil {
		at.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(at).Error)
}

func (r *gormAddictionTypes) GetByID(ctx context.Context, id uuid.UUID) (*models.AddictionType, error) {
	var at models.AddictionType
	if err := r.db.WithContext(ctx).First(&at, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &at, nil
}

func (r *gormAddictionTypes) List(ctx context.Context) ([]models.AddictionType, error) {
	var types []models.AddictionType
	return types, translate(r.db.WithContext(ctx).Order("name ASC").Find(&types).Error)
}

func (r *gormAddictionTypes) Update(ctx context.Context, at *models.AddictionType) error {
	return affected(r.db.WithContext(ctx).Model(&models.AddictionType{}).
		Where("id = ?", at.ID).
		Select("name", "description", "severity_levels").
		Updates(at))
}

func (r *gormAddictionTypes) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.AddictionType{}, "id = ?", id))
}
