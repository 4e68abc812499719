package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountTier string

const (
	BasicTier         AccountTier = "BASIC"
	AuthenticatedTier AccountTier = "AUTHENTICATED"
	MedicalTier       AccountTier = "MEDICAL"
)

type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FID         int64          `gorm:"uniqueIndex" json:"fid"`
	Username    string         `gorm:"type:varchar(255)" json:"username"`
	DisplayName string         `gorm:"type:varchar(255)" json:"display_name"`
	Email       string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	Tier        AccountTier    `gorm:"type:varchar(20);not null;default:'AUTHENTICATED'" json:"tier"`
	Role        string         `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return nil
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
