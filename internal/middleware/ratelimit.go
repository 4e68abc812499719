package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"orthoiq-api/internal/models"
	apperrors "orthoiq-api/internal/pkg/errors"
	"orthoiq-api/internal/services"
	"strconv"
)

// RateLimiter gates question submission against the persisted daily
// counters. Counter state lives entirely in the database so concurrent
// handler processes share one source of truth; there is no in-memory map.
type RateLimiter struct {
	rateLimitService services.RateLimitService
}

func NewRateLimiter(rateLimitService services.RateLimitService) *RateLimiter {
	return &RateLimiter{
		rateLimitService: rateLimitService,
	}
}

func (rl *RateLimiter) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier, tier := RequestIdentity(r)
		platform := RequestPlatform(r)

		status, err := rl.rateLimitService.Consume(r.Context(), identifier, tier, platform)
		if err != nil {
			// Fail closed: an unreachable counter store denies the request.
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(status.Total))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(status.ResetTime.Unix(), 10))

		if !status.Allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(status)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequestIdentity resolves the rate-limit identifier and tier for a request.
// Authenticated users are keyed by fid; anonymous traffic falls back to the
// session header, then the client IP, always at the basic tier.
func RequestIdentity(r *http.Request) (string, models.AccountTier) {
	if user, ok := services.UserFromContext(r.Context()); ok {
		return "fid:" + strconv.FormatInt(user.FID, 10), user.Tier
	}
	if session := r.Header.Get("X-Session-ID"); session != "" {
		return "session:" + session, models.BasicTier
	}
	return "ip:" + clientIP(r), models.BasicTier
}

// RequestPlatform reads the platform header, defaulting to web.
func RequestPlatform(r *http.Request) string {
	switch p := r.Header.Get("X-OrthoIQ-Platform"); p {
	case services.PlatformMiniApp, services.PlatformFrame:
		return p
	}
	return services.PlatformWeb
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
