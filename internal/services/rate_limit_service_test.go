package services

import (
	"context"
	"errors"
	"fmt"
	"orthoiq-api/internal/config"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRateLimitRepo mirrors the guarded-update semantics of the Postgres
// repository: admission and increment happen under one lock.
type fakeRateLimitRepo struct {
	mu      sync.Mutex
	windows map[string]*models.RateLimit
	failAll bool
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{windows: make(map[string]*models.RateLimit)}
}

func windowKey(identifier, platform string, windowStart time.Time) string {
	return fmt.Sprintf("%s|%s|%d", identifier, platform, windowStart.Unix())
}

func (f *fakeRateLimitRepo) GetWindow(ctx context.Context, identifier, platform string, windowStart time.Time) (*models.RateLimit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("connection refused")
	}
	record, ok := f.windows[windowKey(identifier, platform, windowStart)]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRateLimitRepo) ConsumeWindow(ctx context.Context, identifier, platform string, tier models.AccountTier, windowStart time.Time, cap int) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, false, errors.New("connection refused")
	}

	key := windowKey(identifier, platform, windowStart)
	record, ok := f.windows[key]
	if !ok {
		f.windows[key] = &models.RateLimit{
			Identifier:  identifier,
			Platform:    platform,
			Tier:        tier,
			Count:       1,
			WindowStart: windowStart,
		}
		return 1, true, nil
	}
	if record.Count >= cap {
		return record.Count, false, nil
	}
	record.Count++
	return record.Count, true, nil
}

func (f *fakeRateLimitRepo) CountExhaustedSince(ctx context.Context, since time.Time, tier models.AccountTier, cap int) (int64, error) {
	return 0, nil
}

func newRateLimitServiceForTest(repo *fakeRateLimitRepo) RateLimitService {
	return NewRateLimitService(repo, config.NewRateLimitConfig())
}

func TestConsume_CapExhaustion(t *testing.T) {
	tests := []struct {
		name string
		tier models.AccountTier
		cap  int
	}{
		{"basic tier", models.BasicTier, 1},
		{"authenticated tier", models.AuthenticatedTier, 3},
		{"medical tier", models.MedicalTier, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newRateLimitServiceForTest(newFakeRateLimitRepo())
			ctx := context.Background()

			for i := 0; i < tt.cap; i++ {
				status, err := svc.Consume(ctx, "session:abc", tt.tier, PlatformWeb)
				require.NoError(t, err)
				assert.True(t, status.Allowed, "request %d of %d should be admitted", i+1, tt.cap)
				assert.Equal(t, tt.cap-i-1, status.Remaining)
				assert.Equal(t, tt.cap, status.Total)
			}

			status, err := svc.Consume(ctx, "session:abc", tt.tier, PlatformWeb)
			require.NoError(t, err)
			assert.False(t, status.Allowed, "request beyond the cap must be denied")
			assert.Equal(t, 0, status.Remaining)
		})
	}
}

func TestConsume_BasicTierExample(t *testing.T) {
	svc := newRateLimitServiceForTest(newFakeRateLimitRepo())
	ctx := context.Background()

	first, err := svc.Consume(ctx, "ip:203.0.113.7", models.BasicTier, PlatformFrame)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 0, first.Remaining)

	second, err := svc.Consume(ctx, "ip:203.0.113.7", models.BasicTier, PlatformFrame)
	require.NoError(t, err)
	assert.False(t, second.Allowed)

	// Denied responses carry the next UTC midnight so clients know when
	// quota returns.
	now := time.Now().UTC()
	expectedReset := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	assert.Equal(t, expectedReset, second.ResetTime)
}

func TestEvaluate_DoesNotIncrement(t *testing.T) {
	svc := newRateLimitServiceForTest(newFakeRateLimitRepo())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status, err := svc.Evaluate(ctx, "fid:42", models.AuthenticatedTier, PlatformMiniApp)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 3, status.Remaining)
	}
}

func TestEvaluate_RemainingInvariant(t *testing.T) {
	repo := newFakeRateLimitRepo()
	svc := newRateLimitServiceForTest(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Consume(ctx, "fid:42", models.AuthenticatedTier, PlatformWeb)
		require.NoError(t, err)

		status, err := svc.Evaluate(ctx, "fid:42", models.AuthenticatedTier, PlatformWeb)
		require.NoError(t, err)

		expected := 3 - (i + 1)
		if expected < 0 {
			expected = 0
		}
		assert.Equal(t, expected, status.Remaining, "remaining must equal max(0, cap-count)")
	}
}

func TestConsume_ConcurrentSingleWinner(t *testing.T) {
	repo := newFakeRateLimitRepo()
	svc := newRateLimitServiceForTest(repo)
	ctx := context.Background()

	// Medical tier, cap 10: burn 9 so every concurrent request sees a
	// counter one below the cap.
	for i := 0; i < 9; i++ {
		_, err := svc.Consume(ctx, "fid:99", models.MedicalTier, PlatformWeb)
		require.NoError(t, err)
	}

	const parallel = 25
	var wg sync.WaitGroup
	admitted := make(chan bool, parallel)

	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := svc.Consume(ctx, "fid:99", models.MedicalTier, PlatformWeb)
			if err == nil && status.Allowed {
				admitted <- true
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	assert.Equal(t, 1, count, "exactly one of the concurrent requests may win the last slot")
}

func TestConsume_DayBoundaryReset(t *testing.T) {
	repo := newFakeRateLimitRepo()
	svc := newRateLimitServiceForTest(repo)
	ctx := context.Background()

	// A counter at cap under yesterday's window must not affect today.
	today, _ := currentWindow(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	repo.windows[windowKey("session:old", PlatformWeb, yesterday)] = &models.RateLimit{
		Identifier:  "session:old",
		Platform:    PlatformWeb,
		Tier:        models.BasicTier,
		Count:       1,
		WindowStart: yesterday,
	}

	status, err := svc.Evaluate(ctx, "session:old", models.BasicTier, PlatformWeb)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 1, status.Remaining)
}

func TestCurrentWindow(t *testing.T) {
	at := time.Date(2025, 3, 14, 17, 45, 12, 0, time.FixedZone("CET", 3600))
	start, reset := currentWindow(at)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), reset)
}

func TestRateLimit_Validation(t *testing.T) {
	svc := newRateLimitServiceForTest(newFakeRateLimitRepo())
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		tier       models.AccountTier
		platform   string
	}{
		{"empty identifier", "", models.BasicTier, PlatformWeb},
		{"unknown tier", "fid:1", models.AccountTier("PLATINUM"), PlatformWeb},
		{"unknown platform", "fid:1", models.BasicTier, "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Consume(ctx, tt.identifier, tt.tier, tt.platform)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

			_, err = svc.Evaluate(ctx, tt.identifier, tt.tier, tt.platform)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestRateLimit_FailsClosedOnStorageError(t *testing.T) {
	repo := newFakeRateLimitRepo()
	repo.failAll = true
	svc := newRateLimitServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Consume(ctx, "fid:1", models.BasicTier, PlatformWeb)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	_, err = svc.Evaluate(ctx, "fid:1", models.BasicTier, PlatformWeb)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}
