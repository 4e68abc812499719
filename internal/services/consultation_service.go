package services

import (
	"context"
	"encoding/json"
	"orthoiq-api/internal/logger"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"orthoiq-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxQuestionLength = 2000

type ConsultationService interface {
	// AskQuestion runs the full submission flow: answer the question via
	// Claude, enrich with specialist stats, persist the consultation.
	// Rate limiting happens before this is called.
	AskQuestion(ctx context.Context, userID *uuid.UUID, question, platform string) (*models.Consultation, error)
	GetConsultation(ctx context.Context, id uuid.UUID, requester *models.User) (*models.Consultation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Consultation, error)
	SetPrivacy(ctx context.Context, id uuid.UUID, userID uuid.UUID, private bool) error
	RefreshSpecialistStats(ctx context.Context, id uuid.UUID) error
}

type consultationService struct {
	repo   repository.ConsultationRepository
	claude ClaudeService
	agents AgentsService
	cache  CacheService
}

func NewConsultationService(
	repo repository.ConsultationRepository,
	claude ClaudeService,
	agents AgentsService,
	cache CacheService,
) ConsultationService {
	return &consultationService{
		repo:   repo,
		claude: claude,
		agents: agents,
		cache:  cache,
	}
}

func (s *consultationService) AskQuestion(ctx context.Context, userID *uuid.UUID, question, platform string) (*models.Consultation, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "question is required")
	}
	if len(question) > maxQuestionLength {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "question is too long")
	}

	answer, err := s.claude.Ask(ctx, question)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Claude call failed", logrus.Fields{
			"error": err.Error(),
		})
		return nil, apperrors.Wrap(err, "failed to generate response")
	}

	consultation := &models.Consultation{
		ID:       uuid.New(),
		UserID:   userID,
		Question: question,
		Response: answer,
		Tier:     models.StandardTier,
		Platform: platform,
	}

	if err := s.repo.Create(ctx, consultation); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to save consultation")
	}

	// Specialist enrichment is best-effort; the consultation stands
	// without it.
	if err := s.RefreshSpecialistStats(ctx, consultation.ID); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Specialist enrichment failed", logrus.Fields{
			"consultation": consultation.ID.String(),
			"error":        err.Error(),
		})
	}

	return consultation, nil
}

func (s *consultationService) GetConsultation(ctx context.Context, id uuid.UUID, requester *models.User) (*models.Consultation, error) {
	if cached := s.getCached(ctx, id); cached != nil {
		if !visibleTo(cached, requester) {
			return nil, apperrors.Wrap(apperrors.ErrInsufficientPermission, "consultation is private")
		}
		return cached, nil
	}

	consultation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "consultation storage unreachable")
	}
	if consultation == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "consultation not found")
	}

	if !visibleTo(consultation, requester) {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientPermission, "consultation is private")
	}

	s.setCached(ctx, consultation)
	return consultation, nil
}

func (s *consultationService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Consultation, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *consultationService) SetPrivacy(ctx context.Context, id uuid.UUID, userID uuid.UUID, private bool) error {
	err := s.repo.SetPrivacy(ctx, id, userID, private)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrNotFound, "consultation not found")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *consultationService) RefreshSpecialistStats(ctx context.Context, id uuid.UUID) error {
	assessment, err := s.agents.GetAssessment(ctx, id.String())
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSpecialistStats(ctx, id, assessment.SpecialistCount, assessment.ConsensusPct); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// visibleTo gates private consultations to their owner and reviewers.
func visibleTo(consultation *models.Consultation, requester *models.User) bool {
	if !consultation.Private {
		return true
	}
	if requester == nil {
		return false
	}
	if consultation.UserID != nil && requester.ID == *consultation.UserID {
		return true
	}
	return requester.Role == "admin" || requester.Role == "reviewer"
}

func (s *consultationService) getCached(ctx context.Context, id uuid.UUID) *models.Consultation {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, ConsultationCacheKey(id.String()))
	if err != nil {
		return nil
	}
	var consultation models.Consultation
	if err := json.Unmarshal([]byte(raw), &consultation); err != nil {
		return nil
	}
	return &consultation
}

func (s *consultationService) setCached(ctx context.Context, consultation *models.Consultation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ConsultationCacheKey(consultation.ID.String()), consultation, 15*time.Minute); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to cache consultation", logrus.Fields{
			"consultation": consultation.ID.String(),
			"error":        err.Error(),
		})
	}
}

func (s *consultationService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ConsultationCacheKey(id.String())); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to invalidate consultation cache", logrus.Fields{
			"consultation": id.String(),
			"error":        err.Error(),
		})
	}
}
