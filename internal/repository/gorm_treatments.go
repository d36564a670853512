package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type gormTreatments struct {
	db *gorm.DB
}

func (r *gormTreatments) Create(ctx context.Context, req *models.TreatmentRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *gormTreatments) List(ctx context.Context, filter TreatmentFilter) ([]models.TreatmentRequest, error) {
	q := r.db.WithContext(ctx).Scopes(whereIf("status", filter.Status), newestFirst)
	if filter.PatientID != nil {
		q = q.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		q = q.Where("doctor_id = ?", *filter.DoctorID)
	}
	var reqs []models.TreatmentRequest
	return reqs, translate(q.Find(&reqs).Error)
}

func (r *gormTreatments) RespondIfPending(ctx context.Context, id, doctorID uuid.UUID, status models.TreatmentStatus, at time.Time) error {
	return affected(r.db.WithContext(ctx).Model(&models.TreatmentRequest{}).
		Where("id = ? AND doctor_id = ? AND status = ?", id, doctorID, models.TreatmentPending).
		Updates(map[string]interface{}{"status": status, "updated_at": at}))
}

func (r *gormTreatments) UpdateNotes(ctx context.Context, id, doctorID uuid.UUID, notes string, status *models.TreatmentStatus, at time.Time) error {
	updates := map[string]interface{}{"treatment_notes": notes, "updated_at": at}
	if status != nil {
		updates["status"] = *status
	}
	return affected(r.db.WithContext(ctx).Model(&models.TreatmentRequest{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Updates(updates))
}
