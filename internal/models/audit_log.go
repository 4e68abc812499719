package models

import (
	"time"

	"gorm.io/gorm"
)

type ReviewAuditLog struct {
	gorm.Model
	ReviewerID     string    `json:"reviewerId"`
	Action         string    `json:"action"`
	ConsultationID string    `json:"consultationId"`
	Details        string    `json:"details"`
	Timestamp      time.Time `json:"timestamp"`
}
