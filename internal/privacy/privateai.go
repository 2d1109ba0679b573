package privacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// privateAIEntities is the full entity set requested from the deid API.
var privateAIEntities = []string{
	"ACCOUNT_NUMBER", "AGE", "DATE", "DATE_INTERVAL", "DOB", "DRIVER_LICENSE",
	"DURATION", "EMAIL_ADDRESS", "EVENT", "FILENAME", "GENDER_SEXUALITY",
	"HEALTHCARE_NUMBER", "IP_ADDRESS", "LANGUAGE", "LOCATION",
	"LOCATION_ADDRESS", "LOCATION_CITY", "LOCATION_COORDINATE",
	"LOCATION_COUNTRY", "LOCATION_STATE", "LOCATION_ZIP", "MARITAL_STATUS",
	"MONEY", "NAME", "NAME_FAMILY", "NAME_GIVEN",
	"NAME_MEDICAL_PROFESSIONAL", "NUMERICAL_PII", "ORGANIZATION",
	"ORGANIZATION_MEDICAL_FACILITY", "OCCUPATION", "ORIGIN",
	"PASSPORT_NUMBER", "PASSWORD", "PHONE_NUMBER", "PHYSICAL_ATTRIBUTE",
	"POLITICAL_AFFILIATION", "RELIGION", "SSN", "TIME", "URL", "USERNAME",
	"VEHICLE_ID", "ZODIAC_SIGN", "BLOOD_TYPE", "CONDITION", "DOSE", "DRUG",
	"INJURY", "MEDICAL_PROCESS", "STATISTICS", "BANK_ACCOUNT", "CREDIT_CARD",
	"CREDIT_CARD_EXPIRATION", "CVV", "ROUTING_NUMBER",
}

const defaultPrivateAIURL = "https://api.private-ai.com/deid/v3/process/text"

// PrivateAIScrubber redacts text through the Private AI deid API.
type PrivateAIScrubber struct {
	url    string
	apiKey string
	client *http.Client
}

// NewPrivateAIScrubber returns a scrubber against the given endpoint; url
// may be empty to use the hosted API.
func NewPrivateAIScrubber(url, apiKey string) (*PrivateAIScrubber, error) {
	if apiKey == "" {
		return nil, errors.New("privacy: Private AI API key is required")
	}
	if url == "" {
		url = defaultPrivateAIURL
	}
	return &PrivateAIScrubber{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name identifies the provider.
func (s *PrivateAIScrubber) Name() string { return "PRIVATE_AI" }

type privateAIRequest struct {
	Text            string                 `json:"text"`
	LinkBatch       bool                   `json:"link_batch"`
	EntityDetection privateAIDetection     `json:"entity_detection"`
	ProcessedText   privateAIProcessedText `json:"processed_text"`
}

type privateAIDetection struct {
	Accuracy     string              `json:"accuracy"`
	EntityTypes  []privateAISelector `json:"entity_types"`
	ReturnEntity bool                `json:"return_entity"`
}

type privateAISelector struct {
	Type  string   `json:"type"`
	Value []string `json:"value"`
}

type privateAIProcessedText struct {
	Type    string `json:"type"`
	Pattern string `json:"pattern"`
}

type privateAIResult struct {
	ProcessedText string `json:"processed_text"`
}

// ScrubText redacts text, replacing each detected entity with a numbered
// entity-type marker.
func (s *PrivateAIScrubber) ScrubText(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	payload := privateAIRequest{
		Text: text,
		EntityDetection: privateAIDetection{
			Accuracy:     "high",
			EntityTypes:  []privateAISelector{{Type: "ENABLE", Value: privateAIEntities}},
			ReturnEntity: true,
		},
		ProcessedText: privateAIProcessedText{
			Type:    "MARKER",
			Pattern: "[UNIQUE_NUMBERED_ENTITY_TYPE]",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("privacy: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("privacy: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("privacy: deid request: %w", err)
	}
	defer resp.Body.Close()

	// The API reports errors as an object with a detail field and results
	// as an array, so decode into raw JSON first.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("privacy: decode response: %w", err)
	}
	var failure struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Detail != "" {
		return "", fmt.Errorf("privacy: deid API: %s", failure.Detail)
	}
	var results []privateAIResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", fmt.Errorf("privacy: decode results: %w", err)
	}
	if len(results) == 0 {
		return "", errors.New("privacy: deid API returned no results")
	}
	return results[0].ProcessedText, nil
}
