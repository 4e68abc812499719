package repository

import (
	"context"
	"orthoiq-api/internal/models"

	"gorm.io/gorm"
)

type ReviewAuditLogRepository interface {
	ListAuditLogs(ctx context.Context, page, pageSize int) ([]models.ReviewAuditLog, int64, error)
	CreateAuditLog(ctx context.Context, log *models.ReviewAuditLog) error
}

type reviewAuditLogRepository struct {
	db *gorm.DB
}

func NewReviewAuditLogRepository(db *gorm.DB) ReviewAuditLogRepository {
	return &reviewAuditLogRepository{
		db: db,
	}
}

func (r *reviewAuditLogRepository) ListAuditLogs(ctx context.Context, page, pageSize int) ([]models.ReviewAuditLog, int64, error) {
	var logs []models.ReviewAuditLog
	var total int64

	offset := (page - 1) * pageSize

	err := r.db.WithContext(ctx).Model(&models.ReviewAuditLog{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Order("timestamp DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *reviewAuditLogRepository) CreateAuditLog(ctx context.Context, log *models.ReviewAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
