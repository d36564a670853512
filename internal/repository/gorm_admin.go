package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/havenwelfare/haven-backend/internal/models"
)

type gormAuditLogs struct {
	db *gorm.DB
}

func (r *gormAuditLogs) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *gormAuditLogs) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).Scopes(newestFirst, limitIf(limit)).Find(&logs).Error
	return logs, translate(err)
}

type gormSettings struct {
	db *gorm.DB
}

func (r *gormSettings) Get(ctx context.Context, kind models.SettingType) (*models.AdminSetting, error) {
	var s models.AdminSetting
	if err := r.db.WithContext(ctx).Where("type = ?", kind).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormSettings) Upsert(ctx context.Context, setting *models.AdminSetting) error {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bank_name", "account_number", "ifsc_code", "account_holder_name", "upi_id",
			"qr_code_url", "sendgrid_api_key", "sender_email", "sender_name", "updated_at",
		}),
	}).Create(setting).Error)
}

type gormSystemLogs struct {
	db *gorm.DB
}

func (r *gormSystemLogs) InsertBatch(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(logs, 50).Error)
}

func (r *gormSystemLogs) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, translate(result.Error)
}
