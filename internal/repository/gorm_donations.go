package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type gormDonations struct {
	db *gorm.DB
}

func (r *gormDonations) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(donation).Error)
}

func (r *gormDonations) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var d models.Donation
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDonations) GetByTransactionID(ctx context.Context, transactionID string) (*models.Donation, error) {
	var d models.Donation
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *gormDonations) List(ctx context.Context, filter DonationFilter, limit int) ([]models.Donation, error) {
	q := r.db.WithContext(ctx).Scopes(whereIf("status", filter.Status), newestFirst, limitIf(limit))
	if filter.PatientID != nil {
		q = q.Where("patient_id = ?", *filter.PatientID)
	}
	var donations []models.Donation
	return donations, translate(q.Find(&donations).Error)
}

func (r *gormDonations) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus, remarks *string, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"admin_remarks": remarks,
		"updated_at":    at,
	}))
}

func (r *gormDonations) SumApproved(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("status = ?", models.DonationApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, translate(err)
}

func (r *gormDonations) CountDistinctDonors(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("donor_email IS NOT NULL AND donor_email <> ''").
		Distinct("donor_email").
		Count(&n).Error
	return n, translate(err)
}
