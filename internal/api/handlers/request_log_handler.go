package handlers

import (
	"net/http"
	"orthoiq-api/internal/services"
	"time"
)

type RequestLogHandler struct {
	logService services.RequestLogService
}

func NewRequestLogHandler(logService services.RequestLogService) *RequestLogHandler {
	return &RequestLogHandler{logService: logService}
}

// GetUserLogs - request history for one user over a time range.
func (h *RequestLogHandler) GetUserLogs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	from, to := parseTimeRange(r)

	logs, err := h.logService.GetUserLogs(userID, from, to)
	if err != nil {
		http.Error(w, "Error fetching request logs", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func parseTimeRange(r *http.Request) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	if v := r.URL.Query().Get("from"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			from = parsed
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			to = parsed
		}
	}

	return from, to
}
