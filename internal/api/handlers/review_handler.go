package handlers

import (
	"encoding/json"
	"net/http"
	"orthoiq-api/internal/services"

	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type reviewRequest struct {
	ConsultationID   string `json:"consultationId"`
	Approved         bool   `json:"approved"`
	ClinicalAccuracy int    `json:"clinicalAccuracy"`
	FeedbackNotes    string `json:"feedbackNotes,omitempty"`
}

// SubmitReview - MD review submission. The reviewer identity comes from the
// authenticated session, not the request body.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	reviewer, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	consultationID, err := uuid.Parse(req.ConsultationID)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}

	result, err := h.reviewService.Promote(r.Context(), consultationID, services.ReviewEvent{
		Approved:         req.Approved,
		ClinicalAccuracy: req.ClinicalAccuracy,
		ReviewerID:       reviewer.ID.String(),
		Notes:            req.FeedbackNotes,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListPendingReviews - queue of consultations awaiting MD review.
func (h *ReviewHandler) ListPendingReviews(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParsePaginationParams(r)

	consultations, err := h.reviewService.ListPendingReview(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "Error fetching pending reviews", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, consultations)
}
