package repository

import (
	"context"
	"orthoiq-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MilestoneRepository interface {
	// CreateOnce inserts the feedback row for (consultation, day) and
	// reports false when that milestone was already submitted.
	CreateOnce(ctx context.Context, feedback *models.MilestoneFeedback) (bool, error)
	ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]models.MilestoneFeedback, error)
}

type milestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) CreateOnce(ctx context.Context, feedback *models.MilestoneFeedback) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(feedback)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *milestoneRepository) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]models.MilestoneFeedback, error) {
	var feedback []models.MilestoneFeedback

	err := r.db.WithContext(ctx).
		Where("consultation_id = ?", consultationID).
		Order("day ASC").
		Find(&feedback).Error

	return feedback, err
}
