package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NIFService validates tax identification numbers against the external
// validation API.
type NIFService struct {
	baseURL    string
	httpClient *http.Client
}

// NewNIFService creates a new tax-ID validation client
func NewNIFService(baseURL string) *NIFService {
	return &NIFService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate asks the collaborator whether the given tax ID is valid.
func (s *NIFService) Validate(nif string) (bool, error) {
	reqURL := fmt.Sprintf("%s?nif=%s", s.baseURL, url.QueryEscape(nif))

	resp, err := s.httpClient.Get(reqURL)
	if err != nil {
		return false, fmt.Errorf("failed to reach NIF validation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("NIF validation API error: status %d", resp.StatusCode)
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode NIF validation response: %w", err)
	}

	return result.Valid, nil
}
