package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MilestoneFeedback struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_milestone_day" json:"consultation_id"`
	Day            int            `gorm:"not null;uniqueIndex:idx_milestone_day" json:"day"`
	Metrics        Metrics        `gorm:"type:jsonb" json:"metrics"`
	Validated      bool           `gorm:"not null;default:false" json:"validated"`
	TokenReward    int            `gorm:"not null;default:0" json:"token_reward"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Consultation   Consultation   `gorm:"foreignKey:ConsultationID" json:"-"`
}

func (MilestoneFeedback) TableName() string {
	return "milestone_feedback"
}

func (m *MilestoneFeedback) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	return nil
}

func (m *MilestoneFeedback) BeforeUpdate(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}
