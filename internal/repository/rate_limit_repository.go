package repository

import (
	"context"
	"errors"
	"orthoiq-api/internal/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepository interface {
	GetWindow(ctx context.Context, identifier, platform string, windowStart time.Time) (*models.RateLimit, error)
	// ConsumeWindow admits and increments in one guarded statement. It
	// returns the post-increment count and whether the request was admitted.
	ConsumeWindow(ctx context.Context, identifier, platform string, tier models.AccountTier, windowStart time.Time, cap int) (int, bool, error)
	CountExhaustedSince(ctx context.Context, since time.Time, tier models.AccountTier, cap int) (int64, error)
}

type rateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) GetWindow(ctx context.Context, identifier, platform string, windowStart time.Time) (*models.RateLimit, error) {
	var record models.RateLimit
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND platform = ? AND window_start = ?", identifier, platform, windowStart).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ConsumeWindow never does a read-then-write: admission is a single UPDATE
// guarded by count < cap, so two concurrent requests at cap-1 cannot both
// win. The first request of a window races through an ON CONFLICT insert.
func (r *rateLimitRepository) ConsumeWindow(ctx context.Context, identifier, platform string, tier models.AccountTier, windowStart time.Time, cap int) (int, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		result := r.db.WithContext(ctx).Model(&models.RateLimit{}).
			Where("identifier = ? AND platform = ? AND window_start = ? AND count < ?",
				identifier, platform, windowStart, cap).
			Updates(map[string]interface{}{
				"count":      gorm.Expr("count + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return 0, false, result.Error
		}
		if result.RowsAffected > 0 {
			record, err := r.GetWindow(ctx, identifier, platform, windowStart)
			if err != nil {
				return 0, true, err
			}
			if record == nil {
				return 1, true, nil
			}
			return record.Count, true, nil
		}

		// Either no row exists yet for this window, or the counter is at
		// cap. Try to create the window row; a conflict means it exists.
		record := models.RateLimit{
			Identifier:  identifier,
			Platform:    platform,
			Tier:        tier,
			Count:       1,
			WindowStart: windowStart,
		}
		insert := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&record)
		if insert.Error != nil {
			return 0, false, insert.Error
		}
		if insert.RowsAffected > 0 {
			return 1, true, nil
		}
	}

	// Row exists and the guarded update matched nothing: cap reached.
	return cap, false, nil
}

func (r *rateLimitRepository) CountExhaustedSince(ctx context.Context, since time.Time, tier models.AccountTier, cap int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RateLimit{}).
		Where("window_start >= ? AND tier = ? AND count >= ?", since, tier, cap).
		Count(&count).Error
	return count, err
}
