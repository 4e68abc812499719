package config

import "time"

// ClaudeConfig configures calls to the Anthropic messages API.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

func NewClaudeConfig() *ClaudeConfig {
	return &ClaudeConfig{
		APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		Model:     getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		MaxTokens: 1024,
		Timeout:   30 * time.Second,
	}
}

// AgentsConfig configures calls to the orthoiq-agents microservice.
type AgentsConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewAgentsConfig() *AgentsConfig {
	return &AgentsConfig{
		BaseURL: getEnv("AGENTS_API_URL", "http://localhost:8001"),
		Timeout: 10 * time.Second,
	}
}

// EmailConfig configures review-outcome notifications sent through Resend.
type EmailConfig struct {
	APIKey      string
	FromAddress string
}

func NewEmailConfig() *EmailConfig {
	return &EmailConfig{
		APIKey:      getEnv("RESEND_API_KEY", ""),
		FromAddress: getEnv("EMAIL_FROM", "OrthoIQ <notifications@orthoiq.app>"),
	}
}
