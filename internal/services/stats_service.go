package services

import (
	"context"
	"orthoiq-api/internal/config"
	"orthoiq-api/internal/models"
	"orthoiq-api/internal/repository"
	"time"
)

type StatsService interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type statsService struct {
	statsRepo        repository.StatsRepository
	rateLimitRepo    repository.RateLimitRepository
	consultationRepo repository.ConsultationRepository
	rateConfig       *config.RateLimitConfig
}

func NewStatsService(
	statsRepo repository.StatsRepository,
	rateLimitRepo repository.RateLimitRepository,
	consultationRepo repository.ConsultationRepository,
	rateConfig *config.RateLimitConfig,
) StatsService {
	return &statsService{
		statsRepo:        statsRepo,
		rateLimitRepo:    rateLimitRepo,
		consultationRepo: consultationRepo,
		rateConfig:       rateConfig,
	}
}

func (s *statsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	questionsToday, err := s.statsRepo.CountQuestionsSince(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	byTier, err := s.statsRepo.GetConsultationsByTier(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.statsRepo.CountPendingReviews(ctx)
	if err != nil {
		return nil, err
	}

	var rateLimited int64
	for tier, cap := range s.rateConfig.Limits {
		exhausted, err := s.rateLimitRepo.CountExhaustedSince(ctx, dayStart, tier, cap)
		if err != nil {
			return nil, err
		}
		rateLimited += exhausted
	}

	recent, err := s.consultationRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		QuestionsToday:      questionsToday,
		ConsultationsByTier: byTier,
		PendingReviews:      pending,
		RateLimitedToday:    rateLimited,
		RecentConsultations: recent,
	}, nil
}
