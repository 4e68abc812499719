package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"orthoiq-api/internal/services"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateLimitService struct {
	status     *models.RateLimitStatus
	err        error
	identifier string
	tier       models.AccountTier
	platform   string
	consumed   int
}

func (s *stubRateLimitService) Evaluate(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error) {
	return s.status, s.err
}

func (s *stubRateLimitService) Consume(ctx context.Context, identifier string, tier models.AccountTier, platform string) (*models.RateLimitStatus, error) {
	s.identifier = identifier
	s.tier = tier
	s.platform = platform
	s.consumed++
	return s.status, s.err
}

func nextHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusCreated)
	})
}

func TestRateLimit_AdmittedRequestPassesThrough(t *testing.T) {
	reset := time.Now().UTC().Add(6 * time.Hour)
	stub := &stubRateLimitService{status: &models.RateLimitStatus{
		Allowed:   true,
		Remaining: 2,
		Total:     3,
		ResetTime: reset,
	}}
	rl := NewRateLimiter(stub)

	called := false
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil)
	rec := httptest.NewRecorder()

	rl.RateLimit(nextHandler(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 1, stub.consumed)
}

func TestRateLimit_DeniedRequestGets429(t *testing.T) {
	reset := time.Now().UTC().Add(3 * time.Hour)
	stub := &stubRateLimitService{status: &models.RateLimitStatus{
		Allowed:   false,
		Remaining: 0,
		Total:     1,
		ResetTime: reset,
	}}
	rl := NewRateLimiter(stub)

	called := false
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil)
	rec := httptest.NewRecorder()

	rl.RateLimit(nextHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called, "denied requests must not reach the handler")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body models.RateLimitStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Allowed)
	assert.Equal(t, reset.Unix(), body.ResetTime.Unix())
}

func TestRateLimit_StorageErrorFailsClosed(t *testing.T) {
	stub := &stubRateLimitService{err: apperrors.Wrap(apperrors.ErrStorageUnavailable, "down")}
	rl := NewRateLimiter(stub)

	called := false
	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil)
	rec := httptest.NewRecorder()

	rl.RateLimit(nextHandler(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIdentity(t *testing.T) {
	t.Run("authenticated user keyed by fid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		user := &models.User{FID: 4242, Tier: models.MedicalTier}
		req = req.WithContext(services.WithUserContext(req.Context(), user))

		identifier, tier := RequestIdentity(req)
		assert.Equal(t, "fid:4242", identifier)
		assert.Equal(t, models.MedicalTier, tier)
	})

	t.Run("session header falls back to basic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Session-ID", "abc-123")

		identifier, tier := RequestIdentity(req)
		assert.Equal(t, "session:abc-123", identifier)
		assert.Equal(t, models.BasicTier, tier)
	})

	t.Run("bare request keyed by client IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:51544"

		identifier, tier := RequestIdentity(req)
		assert.Equal(t, "ip:203.0.113.9", identifier)
		assert.Equal(t, models.BasicTier, tier)
	})
}

func TestRequestPlatform(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", services.PlatformWeb},
		{"miniapp", services.PlatformMiniApp},
		{"frame", services.PlatformFrame},
		{"android", services.PlatformWeb},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("X-OrthoIQ-Platform", tt.header)
		}
		assert.Equal(t, tt.want, RequestPlatform(req))
	}
}
