package handlers

import (
	"encoding/json"
	"net/http"
	"orthoiq-api/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationService services.ConsultationService
}

func NewConsultationHandler(consultationService services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultationService: consultationService}
}

// GetConsultation - fetch a single consultation, privacy-gated.
func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}

	requester, _ := services.UserFromContext(r.Context())

	consultation, err := h.consultationService.GetConsultation(r.Context(), id, requester)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, consultation)
}

// ListMyConsultations - consultations owned by the authenticated user.
func (h *ConsultationHandler) ListMyConsultations(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := ParsePaginationParams(r)

	consultations, err := h.consultationService.ListByUser(r.Context(), user.ID, limit, offset)
	if err != nil {
		http.Error(w, "Error fetching consultations", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, consultations)
}

type privacyRequest struct {
	Private bool `json:"private"`
}

// SetPrivacy - owner-only toggle of the consultation privacy flag.
func (h *ConsultationHandler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	user, ok := services.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}

	var req privacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.consultationService.SetPrivacy(r.Context(), id, user.ID, req.Private); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"private": req.Private})
}
