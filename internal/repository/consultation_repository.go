package repository

import (
	"context"
	"errors"
	"orthoiq-api/internal/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewUpdate carries the MD review audit fields persisted together with a
// tier value. Tier and review columns always change in the same statement.
type ReviewUpdate struct {
	Tier             models.ConsultationTier
	Approved         bool
	ReviewerID       string
	ClinicalAccuracy int
	Notes            string
	ReviewedAt       time.Time
}

type ConsultationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Consultation, error)
	Create(ctx context.Context, consultation *models.Consultation) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Consultation, error)
	ListPendingReview(ctx context.Context, limit, offset int) ([]models.Consultation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Consultation, error)
	// ApplyReview writes the review fields and the tier in one guarded
	// UPDATE. It reports false when the guard missed, meaning another
	// review landed first and the caller must reload.
	ApplyReview(ctx context.Context, id uuid.UUID, fromTier models.ConsultationTier, update ReviewUpdate) (bool, error)
	UpdateSpecialistStats(ctx context.Context, id uuid.UUID, specialistCount int, consensusPct float64) error
	SetPrivacy(ctx context.Context, id uuid.UUID, userID uuid.UUID, private bool) error
}

type consultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Consultation, error) {
	var consultation models.Consultation

	err := r.db.WithContext(ctx).First(&consultation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &consultation, err
}

func (r *consultationRepository) Create(ctx context.Context, consultation *models.Consultation) error {
	return r.db.WithContext(ctx).Create(consultation).Error
}

func (r *consultationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Consultation, error) {
	var consultations []models.Consultation

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&consultations).Error

	return consultations, err
}

func (r *consultationRepository) ListPendingReview(ctx context.Context, limit, offset int) ([]models.Consultation, error) {
	var consultations []models.Consultation

	err := r.db.WithContext(ctx).
		Where("md_reviewed = ?", false).
		Limit(limit).Offset(offset).
		Order("created_at ASC").
		Find(&consultations).Error

	return consultations, err
}

func (r *consultationRepository) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	var consultations []models.Consultation

	err := r.db.WithContext(ctx).
		Where("private = ?", false).
		Limit(limit).
		Order("created_at DESC").
		Find(&consultations).Error

	return consultations, err
}

func (r *consultationRepository) ApplyReview(ctx context.Context, id uuid.UUID, fromTier models.ConsultationTier, update ReviewUpdate) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND tier = ?", id, fromTier).
		Updates(map[string]interface{}{
			"tier":              update.Tier,
			"md_reviewed":       true,
			"md_approved":       update.Approved,
			"reviewer_id":       update.ReviewerID,
			"clinical_accuracy": update.ClinicalAccuracy,
			"review_notes":      update.Notes,
			"reviewed_at":       update.ReviewedAt,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *consultationRepository) UpdateSpecialistStats(ctx context.Context, id uuid.UUID, specialistCount int, consensusPct float64) error {
	result := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"specialist_count": specialistCount,
			"consensus_pct":    consensusPct,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *consultationRepository) SetPrivacy(ctx context.Context, id uuid.UUID, userID uuid.UUID, private bool) error {
	result := r.db.WithContext(ctx).Model(&models.Consultation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"private":    private,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
