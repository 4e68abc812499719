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

	"github.com/sirupsen/logrus"
)

// Platforms the product serves. Anything else is rejected before storage is
// touched.
const (
	PlatformWeb     = "web"
	PlatformMiniApp = "miniapp"
	PlatformFrame   = "frame"
)

// RateLimitService gates daily question quota per identifier and tier.
// Counters live in Postgres keyed by (identifier, platform, UTC day); all
// admission decisions come from single guarded statements so concurrent
// handlers across processes cannot over-admit.
//
// Storage failures DENY the request (fail closed). That policy holds at
// every call site.
type RateLimitService interface {
	Evaluate(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error)
	Consume(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error)
}

type rateLimitService struct {
	repo       repository.RateLimitRepository
	rateConfig *config.RateLimitConfig
}

func NewRateLimitService(repo repository.RateLimitRepository, rateConfig *config.RateLimitConfig) RateLimitService {
	return &rateLimitService{
		repo:       repo,
		rateConfig: rateConfig,
	}
}

// Evaluate is the read-only check: it never increments.
func (s *rateLimitService) Evaluate(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error) {
	if err := validateRateLimitInput(identifier, tier, platform); err != nil {
		return nil, err
	}

	windowStart, resetTime := currentWindow(time.Now())
	cap := s.rateConfig.CapFor(tier)

	record, err := s.repo.GetWindow(ctx, identifier, platform, windowStart)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Rate limit lookup failed", logrus.Fields{
			"identifier": identifier,
			"platform":   platform,
			"error":      err.Error(),
		})
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "rate limit storage unreachable")
	}

	count := 0
	if record != nil {
		count = record.Count
	}

	return &models.RateLimitStatus{
		Allowed:   count < cap,
		Remaining: remaining(cap, count),
		Total:     cap,
		ResetTime: resetTime,
	}, nil
}

// Consume admits and increments atomically. A denied request gets a status
// with Allowed=false and the window reset time; only validation and storage
// problems surface as errors.
func (s *rateLimitService) Consume(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error) {
	if err := validateRateLimitInput(identifier, tier, platform); err != nil {
		return nil, err
	}

	windowStart, resetTime := currentWindow(time.Now())
	cap := s.rateConfig.CapFor(tier)

	count, admitted, err := s.repo.ConsumeWindow(ctx, identifier, platform, tier, windowStart, cap)
	if err != nil {
		logger.LogEvent(logrus.ErrorLevel, "Rate limit consume failed", logrus.Fields{
			"identifier": identifier,
			"platform":   platform,
			"error":      err.Error(),
		})
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, "rate limit storage unreachable")
	}

	if !admitted {
		logger.LogEvent(logrus.InfoLevel, "Rate limit exceeded", logrus.Fields{
			"identifier": identifier,
			"tier":       string(tier),
			"platform":   platform,
		})
	}

	return &models.RateLimitStatus{
		Allowed:   admitted,
		Remaining: remaining(cap, count),
		Total:     cap,
		ResetTime: resetTime,
	}, nil
}

func validateRateLimitInput(identifier string, tier models.AccountTier, platform string) error {
	if identifier == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "identifier is required")
	}
	switch tier {
	case models.BasicTier, models.AuthenticatedTier, models.MedicalTier:
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown tier %q", tier))
	}
	switch platform {
	case PlatformWeb, PlatformMiniApp, PlatformFrame:
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown platform %q", platform))
	}
	return nil
}

// currentWindow returns the UTC midnight boundary the counter row is keyed
// by and the moment quota returns.
func currentWindow(now time.Time) (time.Time, time.Time) {
	utc := now.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func remaining(cap, count int) int {
	if count >= cap {
		return 0
	}
	return cap - count
}
