package repository

import (
	"context"
	"orthoiq-api/internal/models"
	"time"

	"gorm.io/gorm"
)

type StatsRepository interface {
	CountQuestionsSince(ctx context.Context, since time.Time) (int64, error)
	GetConsultationsByTier(ctx context.Context) (map[string]int64, error)
	CountPendingReviews(ctx context.Context) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{
		db: db,
	}
}

func (r *statsRepository) CountQuestionsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *statsRepository) GetConsultationsByTier(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Tier  string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Select("tier, count(*) as count").
		Group("tier").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	consultationsByTier := make(map[string]int64)
	for _, result := range results {
		consultationsByTier[result.Tier] = result.Count
	}
	return consultationsByTier, nil
}

func (r *statsRepository) CountPendingReviews(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("md_reviewed = ?", false).
		Count(&count).Error
	return count, err
}
