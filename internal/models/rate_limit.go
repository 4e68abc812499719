package models

import (
	"time"
)

// RateLimit is one daily question counter. Rows are keyed by
// (identifier, platform, window_start) so a new UTC day always lands on a
// fresh row and stale counters never over-admit across the boundary.
type RateLimit struct {
	ID          uint        `gorm:"primarykey"`
	Identifier  string      `gorm:"type:varchar(255);not null;uniqueIndex:idx_rate_limit_window" json:"identifier"`
	Platform    string      `gorm:"type:varchar(20);not null;uniqueIndex:idx_rate_limit_window" json:"platform"`
	Tier        AccountTier `gorm:"type:varchar(20);not null" json:"tier"`
	Count       int         `gorm:"not null;default:0" json:"count"`
	WindowStart time.Time   `gorm:"not null;uniqueIndex:idx_rate_limit_window;index" json:"window_start"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RateLimit) TableName() string {
	return "rate_limits"
}

// RateLimitStatus is the evaluation result returned to callers.
type RateLimitStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Total     int       `json:"total"`
	ResetTime time.Time `json:"resetTime"`
}
