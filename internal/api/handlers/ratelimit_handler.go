package handlers

import (
	"net/http"
	"orthoiq-api/internal/middleware"
	"orthoiq-api/internal/services"
)

type RateLimitHandler struct {
	rateLimitService services.RateLimitService
}

func NewRateLimitHandler(rateLimitService services.RateLimitService) *RateLimitHandler {
	return &RateLimitHandler{rateLimitService: rateLimitService}
}

// CheckRateLimit - read-only quota check. Never increments the counter.
func (h *RateLimitHandler) CheckRateLimit(w http.ResponseWriter, r *http.Request) {
	identifier, tier := middleware.RequestIdentity(r)
	platform := middleware.RequestPlatform(r)

	status, err := h.rateLimitService.Evaluate(r.Context(), identifier, tier, platform)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}
