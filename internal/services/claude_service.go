package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"orthoiq-api/internal/config"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

const orthoSystemPrompt = "You are OrthoIQ, an orthopedic health assistant. " +
	"Answer patient questions about bones, joints, and musculoskeletal recovery. " +
	"Always recommend consulting a physician for diagnosis."

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ClaudeService answers a patient question through the Anthropic messages
// API. The HTTP client enforces the configured timeout.
type ClaudeService interface {
	Ask(ctx context.Context, question string) (string, error)
}

type claudeService struct {
	cfg    *config.ClaudeConfig
	client *http.Client
}

func NewClaudeService(cfg *config.ClaudeConfig) ClaudeService {
	return &claudeService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *claudeService) Ask(ctx context.Context, question string) (string, error) {
	payload := claudeRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		System:    orthoSystemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: question},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("anthropic API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("anthropic API returned status %d", resp.StatusCode)
	}

	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("anthropic API returned empty response")
	}
	return parsed.Content[0].Text, nil
}
