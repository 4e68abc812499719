package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationTier string

const (
	StandardTier    ConsultationTier = "standard"
	CompleteTier    ConsultationTier = "complete"
	VerifiedTier    ConsultationTier = "verified"
	ExceptionalTier ConsultationTier = "exceptional"
)

// Rank orders tiers for monotonic promotion checks. Unknown tiers rank
// below standard so a corrupted value can never shadow a real one.
func (t ConsultationTier) Rank() int {
	switch t {
	case StandardTier:
		return 1
	case CompleteTier:
		return 2
	case VerifiedTier:
		return 3
	case ExceptionalTier:
		return 4
	}
	return 0
}

type Consultation struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Question           string           `gorm:"type:text;not null" json:"question"`
	Response           string           `gorm:"type:text" json:"response"`
	Tier               ConsultationTier `gorm:"type:varchar(20);not null;default:'standard'" json:"tier"`
	SpecialistCount    int              `gorm:"not null;default:0" json:"specialist_count"`
	ConsensusPct       float64          `gorm:"type:decimal(5,4);not null;default:0" json:"consensus_pct"`
	MDReviewed         bool             `gorm:"not null;default:false" json:"md_reviewed"`
	MDApproved         bool             `gorm:"not null;default:false" json:"md_approved"`
	ReviewerID         string           `gorm:"type:varchar(255)" json:"reviewer_id,omitempty"`
	ClinicalAccuracy   int              `gorm:"not null;default:0" json:"clinical_accuracy,omitempty"`
	ReviewNotes        string           `gorm:"type:text" json:"review_notes,omitempty"`
	ReviewedAt         *time.Time       `json:"reviewed_at,omitempty"`
	Private            bool             `gorm:"not null;default:false" json:"private"`
	Platform           string           `gorm:"type:varchar(20);not null" json:"platform"`
	CreatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Tier == "" {
		c.Tier = StandardTier
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return nil
}

func (c *Consultation) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}
