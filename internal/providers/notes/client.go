package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"medscribe/internal/domain"
	"medscribe/internal/ports"
)

// Config contains document-synthesis client configuration.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client invokes the remote document-synthesis capability with the
// rendered transcript and an optional serialized style profile.
type Client struct {
	config     Config
	httpClient *http.Client
}

type synthesisRequest struct {
	Transcript       string                `json:"transcript"`
	PatientLabel     string                `json:"patientLabel"`
	ClinicianLabel   string                `json:"clinicianLabel"`
	EncounterRef     domain.EncounterRef   `json:"encounterRef"`
	StylePreferences *domain.StyleProfile  `json:"stylePreferences,omitempty"`
	Model            string                `json:"model,omitempty"`
}

type synthesisResponse struct {
	Subjective          string   `json:"subjective"`
	Objective           string   `json:"objective"`
	Assessment          string   `json:"assessment"`
	Plan                string   `json:"plan"`
	ICD10Codes          []string `json:"icd10Codes"`
	PatientInstructions string   `json:"patientInstructions"`
}

func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("synthesis endpoint cannot be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Synthesize produces a structured clinical note. All response fields
// default to empty; a failed call never yields a partial document.
func (c *Client) Synthesize(ctx context.Context, req ports.SynthesisRequest) (domain.ClinicalDocument, error) {
	payload, err := json.Marshal(synthesisRequest{
		Transcript:       req.Transcript,
		PatientLabel:     req.PatientLabel,
		ClinicianLabel:   req.ClinicianLabel,
		EncounterRef:     req.Encounter,
		StylePreferences: req.Style,
		Model:            c.config.Model,
	})
	if err != nil {
		return domain.ClinicalDocument{}, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.ClinicalDocument{}, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.ClinicalDocument{}, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ClinicalDocument{}, fmt.Errorf("failed to read synthesis response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ClinicalDocument{}, fmt.Errorf("synthesis HTTP error %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var parsed synthesisResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.ClinicalDocument{}, fmt.Errorf("failed to parse synthesis response: %w", err)
	}

	return domain.ClinicalDocument{
		Subjective:          parsed.Subjective,
		Objective:           parsed.Objective,
		Assessment:          parsed.Assessment,
		Plan:                parsed.Plan,
		DiagnosisCodes:      parsed.ICD10Codes,
		PatientInstructions: parsed.PatientInstructions,
	}, nil
}
