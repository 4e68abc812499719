package config

import (
	"orthoiq-api/internal/models"
)

type RateLimitConfig struct {
	Limits map[models.AccountTier]int
}

func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Limits: map[models.AccountTier]int{
			models.BasicTier:         1,
			models.AuthenticatedTier: 3,
			models.MedicalTier:       10,
		},
	}
}

// CapFor returns the daily question cap for a tier. Unknown tiers get the
// basic cap so a malformed token can never widen the quota.
func (c *RateLimitConfig) CapFor(tier models.AccountTier) int {
	if limit, ok := c.Limits[tier]; ok {
		return limit
	}
	return c.Limits[models.BasicTier]
}
