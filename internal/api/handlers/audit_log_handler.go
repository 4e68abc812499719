package handlers

import (
	"net/http"
	"orthoiq-api/internal/repository"
	"strconv"
)

type AuditLogHandler struct {
	auditRepo repository.ReviewAuditLogRepository
}

func NewAuditLogHandler(auditRepo repository.ReviewAuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{auditRepo: auditRepo}
}

// GetAuditLogs - paginated trail of MD review actions.
func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := 1
	pageSize := 50

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 200 {
			pageSize = parsed
		}
	}

	logs, total, err := h.auditRepo.ListAuditLogs(r.Context(), page, pageSize)
	if err != nil {
		http.Error(w, "Error fetching audit logs", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}
