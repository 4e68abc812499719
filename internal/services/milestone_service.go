package services

import (
	"context"
	"fmt"
	"orthoiq-api/internal/config"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"orthoiq-api/internal/repository"

	"github.com/google/uuid"
)

// MilestoneService records patient-reported follow-up feedback on the fixed
// recovery schedule. One row per (consultation, day); a second submission
// for the same day is rejected, not merged.
type MilestoneService interface {
	SubmitFeedback(ctx context.Context, consultationID uuid.UUID, day int, metrics models.Metrics) (*models.MilestoneFeedback, error)
	ListFeedback(ctx context.Context, consultationID uuid.UUID) ([]models.MilestoneFeedback, error)
}

type milestoneService struct {
	repo             repository.MilestoneRepository
	consultationRepo repository.ConsultationRepository
}

func NewMilestoneService(repo repository.MilestoneRepository, consultationRepo repository.ConsultationRepository) MilestoneService {
	return &milestoneService{
		repo:             repo,
		consultationRepo: consultationRepo,
	}
}

func (s *milestoneService) SubmitFeedback(ctx context.Context, consultationID uuid.UUID, day int, metrics models.Metrics) (*models.MilestoneFeedback, error) {
	reward, ok := config.MilestoneSchedule[day]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("day %d is not a milestone day", day))
	}
	if len(metrics) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "metrics are required")
	}

	consultation, err := s.consultationRepo.GetByID(ctx, consultationID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "consultation storage unreachable")
	}
	if consultation == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "consultation not found")
	}

	feedback := &models.MilestoneFeedback{
		ID:             uuid.New(),
		ConsultationID: consultationID,
		Day:            day,
		Metrics:        metrics,
		Validated:      true,
		TokenReward:    reward,
	}

	created, err := s.repo.CreateOnce(ctx, feedback)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "milestone storage unreachable")
	}
	if !created {
		return nil, apperrors.Wrap(apperrors.ErrAlreadyExists, fmt.Sprintf("feedback for day %d already submitted", day))
	}

	return feedback, nil
}

func (s *milestoneService) ListFeedback(ctx context.Context, consultationID uuid.UUID) ([]models.MilestoneFeedback, error) {
	return s.repo.ListByConsultation(ctx, consultationID)
}
