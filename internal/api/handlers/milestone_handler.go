package handlers

import (
	"encoding/json"
	"net/http"
	"orthoiq-api/internal/models"
	"orthoiq-api/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type MilestoneHandler struct {
	milestoneService services.MilestoneService
}

func NewMilestoneHandler(milestoneService services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{milestoneService: milestoneService}
}

type milestoneRequest struct {
	Day     int            `json:"day"`
	Metrics models.Metrics `json:"metrics"`
}

// SubmitFeedback - record patient-reported milestone feedback for a
// consultation. One submission per milestone day.
func (h *MilestoneHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	consultationID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}

	var req milestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	feedback, err := h.milestoneService.SubmitFeedback(r.Context(), consultationID, req.Day, req.Metrics)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedback)
}

// ListFeedback - all milestone feedback recorded for a consultation.
func (h *MilestoneHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	consultationID, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid consultation ID", http.StatusBadRequest)
		return
	}

	feedback, err := h.milestoneService.ListFeedback(r.Context(), consultationID)
	if err != nil {
		http.Error(w, "Error fetching milestone feedback", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, feedback)
}
