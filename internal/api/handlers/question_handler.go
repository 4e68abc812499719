package handlers

import (
	"encoding/json"
	"net/http"
	"orthoiq-api/internal/middleware"
	"orthoiq-api/internal/services"

	"github.com/google/uuid"
)

type QuestionHandler struct {
	consultationService services.ConsultationService
}

func NewQuestionHandler(consultationService services.ConsultationService) *QuestionHandler {
	return &QuestionHandler{consultationService: consultationService}
}

type questionRequest struct {
	Question string `json:"question"`
}

// AskQuestion - submit a question to the AI assistant. Rate limiting has
// already run in middleware by the time this executes.
func (h *QuestionHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var userID *uuid.UUID
	if user, ok := services.UserFromContext(r.Context()); ok {
		userID = &user.ID
	}

	platform := middleware.RequestPlatform(r)

	consultation, err := h.consultationService.AskQuestion(r.Context(), userID, req.Question, platform)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, consultation)
}
