package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"orthoiq-api/internal/config"
)

// SpecialistAssessment is what the orthoiq-agents microservice reports for a
// consultation after its specialist agents have weighed in.
type SpecialistAssessment struct {
	SpecialistCount int     `json:"specialist_count"`
	ConsensusPct    float64 `json:"consensus_pct"`
}

// AgentsService talks to the orthoiq-agents microservice. The service is a
// black box here; callers treat failures as non-fatal enrichment misses.
type AgentsService interface {
	GetAssessment(ctx context.Context, consultationID string) (*SpecialistAssessment, error)
}

type agentsService struct {
	cfg    *config.AgentsConfig
	client *http.Client
}

func NewAgentsService(cfg *config.AgentsConfig) AgentsService {
	return &agentsService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *agentsService) GetAssessment(ctx context.Context, consultationID string) (*SpecialistAssessment, error) {
	url := fmt.Sprintf("%s/consultations/%s/assessment", s.cfg.BaseURL, consultationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agents service returned status %d", resp.StatusCode)
	}

	var assessment SpecialistAssessment
	if err := json.NewDecoder(resp.Body).Decode(&assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}
