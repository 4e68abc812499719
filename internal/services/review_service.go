package services

import (
	"context"
	"fmt"
	"orthoiq-api/internal/config"
	"orthoiq-api/internal/logger"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"orthoiq-api/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReviewEvent is one MD judgment on a consultation.
type ReviewEvent struct {
	Approved         bool   `json:"approved"`
	ClinicalAccuracy int    `json:"clinicalAccuracy"`
	ReviewerID       string `json:"reviewerId"`
	Notes            string `json:"feedbackNotes,omitempty"`
}

type PromotionResult struct {
	PreviousTier models.ConsultationTier `json:"previousTier"`
	NewTier      models.ConsultationTier `json:"newTier"`
	Upgraded     bool                    `json:"tierUpgraded"`
}

// ReviewService advances consultations along
// standard -> complete -> verified -> exceptional. Tier never moves
// backward, a rejected review never moves it at all, and re-delivering an
// identical event lands on the same tier it already produced.
type ReviewService interface {
	Promote(ctx context.Context, consultationID uuid.UUID, event ReviewEvent) (*PromotionResult, error)
	ListPendingReview(ctx context.Context, limit, offset int) ([]models.Consultation, error)
}

type reviewService struct {
	consultationRepo repository.ConsultationRepository
	auditRepo        repository.ReviewAuditLogRepository
	notifier         NotificationService
	userRepo         repository.UserRepository
	cache            CacheService
	reviewConfig     *config.ReviewConfig
}

func NewReviewService(
	consultationRepo repository.ConsultationRepository,
	auditRepo repository.ReviewAuditLogRepository,
	notifier NotificationService,
	userRepo repository.UserRepository,
	cache CacheService,
	reviewConfig *config.ReviewConfig,
) ReviewService {
	return &reviewService{
		consultationRepo: consultationRepo,
		auditRepo:        auditRepo,
		notifier:         notifier,
		userRepo:         userRepo,
		cache:            cache,
		reviewConfig:     reviewConfig,
	}
}

func (s *reviewService) Promote(ctx context.Context, consultationID uuid.UUID, event ReviewEvent) (*PromotionResult, error) {
	if err := s.validateEvent(event); err != nil {
		return nil, err
	}

	// The tier guard on the UPDATE can miss when another review lands
	// between the read and the write; reload and recompute when it does.
	for attempt := 0; attempt < 3; attempt++ {
		consultation, err := s.consultationRepo.GetByID(ctx, consultationID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "consultation storage unreachable")
		}
		if consultation == nil {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "consultation not found")
		}

		if isDuplicateEvent(consultation, event) {
			return &PromotionResult{
				PreviousTier: consultation.Tier,
				NewTier:      consultation.Tier,
				Upgraded:     false,
			}, nil
		}

		previous := consultation.Tier
		next := s.nextTier(consultation, event)

		applied, err := s.consultationRepo.ApplyReview(ctx, consultationID, previous, repository.ReviewUpdate{
			Tier:             next,
			Approved:         event.Approved,
			ReviewerID:       event.ReviewerID,
			ClinicalAccuracy: event.ClinicalAccuracy,
			Notes:            event.Notes,
			ReviewedAt:       time.Now(),
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "consultation storage unreachable")
		}
		if !applied {
			continue
		}

		result := &PromotionResult{
			PreviousTier: previous,
			NewTier:      next,
			Upgraded:     next != previous,
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, ConsultationCacheKey(consultationID.String())); err != nil {
				logger.LogEvent(logrus.WarnLevel, "Failed to invalidate consultation cache", logrus.Fields{
					"consultation": consultationID.String(),
					"error":        err.Error(),
				})
			}
		}
		s.recordAudit(ctx, consultation, event, result)
		if result.Upgraded {
			s.notifyOwner(ctx, consultation, result)
		}
		return result, nil
	}

	return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "consultation busy, review not applied")
}

func (s *reviewService) ListPendingReview(ctx context.Context, limit, offset int) ([]models.Consultation, error) {
	return s.consultationRepo.ListPendingReview(ctx, limit, offset)
}

func (s *reviewService) validateEvent(event ReviewEvent) error {
	if event.ReviewerID == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "reviewerId is required")
	}
	if event.ClinicalAccuracy < s.reviewConfig.MinAccuracy || event.ClinicalAccuracy > s.reviewConfig.MaxAccuracy {
		return apperrors.Wrap(apperrors.ErrInvalidInput,
			fmt.Sprintf("clinicalAccuracy must be between %d and %d", s.reviewConfig.MinAccuracy, s.reviewConfig.MaxAccuracy))
	}
	return nil
}

// nextTier applies the promotion rules to the pre-event state. A single
// approved event may carry a standard case through complete to verified,
// but exceptional requires the case to have been verified before the event.
func (s *reviewService) nextTier(consultation *models.Consultation, event ReviewEvent) models.ConsultationTier {
	if !event.Approved {
		return consultation.Tier
	}

	next := consultation.Tier
	if next == models.StandardTier &&
		(consultation.SpecialistCount >= s.reviewConfig.SpecialistThreshold ||
			consultation.ConsensusPct >= s.reviewConfig.ConsensusThreshold) {
		next = models.CompleteTier
	}
	if next == models.CompleteTier && event.ClinicalAccuracy >= s.reviewConfig.AccuracyThreshold {
		next = models.VerifiedTier
	}
	if consultation.Tier == models.VerifiedTier {
		next = models.ExceptionalTier
	}
	return next
}

// isDuplicateEvent treats a review whose fields match the stored judgment
// as a re-delivery. Without this an approved re-submit on a verified case
// would advance it to exceptional.
func isDuplicateEvent(consultation *models.Consultation, event ReviewEvent) bool {
	return consultation.MDReviewed &&
		consultation.ReviewerID == event.ReviewerID &&
		consultation.MDApproved == event.Approved &&
		consultation.ClinicalAccuracy == event.ClinicalAccuracy &&
		consultation.ReviewNotes == event.Notes
}

func (s *reviewService) recordAudit(ctx context.Context, consultation *models.Consultation, event ReviewEvent, result *PromotionResult) {
	action := "review_rejected"
	if event.Approved {
		action = "review_approved"
	}
	err := s.auditRepo.CreateAuditLog(ctx, &models.ReviewAuditLog{
		ReviewerID:     event.ReviewerID,
		Action:         action,
		ConsultationID: consultation.ID.String(),
		Details:        fmt.Sprintf("tier %s -> %s, accuracy %d", result.PreviousTier, result.NewTier, event.ClinicalAccuracy),
		Timestamp:      time.Now(),
	})
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Failed to write review audit log", logrus.Fields{
			"consultation": consultation.ID.String(),
			"error":        err.Error(),
		})
	}
}

func (s *reviewService) notifyOwner(ctx context.Context, consultation *models.Consultation, result *PromotionResult) {
	if s.notifier == nil {
		return
	}
	if consultation.UserID == nil {
		return
	}
	owner, err := s.userRepo.GetByID(ctx, *consultation.UserID)
	if err != nil || owner == nil || owner.Email == "" {
		return
	}
	if err := s.notifier.SendTierUpgrade(owner.Email, consultation.ID.String(), string(result.NewTier)); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to send tier upgrade email", logrus.Fields{
			"consultation": consultation.ID.String(),
			"error":        err.Error(),
		})
	}
}
