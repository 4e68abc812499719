package middleware

import (
	"bytes"
	"net/http"
	"orthoiq-api/internal/logger"
	"orthoiq-api/internal/models"
	"orthoiq-api/internal/services"
	"strings"

	"github.com/sirupsen/logrus"
)

type ResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

type RequestLogger struct {
	logService services.RequestLogService
}

func NewRequestLogger(logService services.RequestLogService) *RequestLogger {
	return &RequestLogger{
		logService: logService,
	}
}

func (rl *RequestLogger) LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Create custom response writer to capture status code
		rw := &ResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		// Get user from context
		user, ok := services.UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		summary := createRequestSummary(r)

		// Execute the request
		next.ServeHTTP(rw, r)

		// Determine status
		status := models.StatusSuccess
		if rw.status >= 400 {
			status = models.StatusError
		}

		// Log to database off the request path
		go func() {
			err := rl.logService.LogRequest(
				user.ID.String(),
				r.URL.Path,
				r.Method,
				rw.status,
				status,
				summary,
			)

			if err != nil {
				logger.Logger.WithFields(logrus.Fields{
					"error": err,
					"user":  user.ID,
					"path":  r.URL.Path,
				}).Error("Failed to log request")
			}
		}()
	})
}

func createRequestSummary(r *http.Request) string {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	summary := "API request"

	if len(parts) >= 2 {
		switch parts[1] {
		case "questions":
			summary = "Question submitted"
		case "consultations":
			if len(parts) > 3 && parts[3] == "milestones" {
				summary = "Milestone feedback for consultation " + parts[2]
			} else if len(parts) > 2 {
				summary = "Consultation lookup: " + parts[2]
			}
		case "reviews":
			summary = "MD review submission"
		case "ratelimit":
			summary = "Rate limit check"
		}
	}

	return summary
}
