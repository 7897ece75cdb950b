package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckoutCart describes one hosted-checkout purchase request.
type CheckoutCart struct {
	ProjectID   uint    `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	BuyerID     uint    `json:"buyer_id"`
}

// CheckoutSession is the collaborator's reference to a hosted checkout page.
type CheckoutSession struct {
	ID          string `json:"id"`
	RedirectURL string `json:"url"`
}

// SessionDetails holds the completed-payment data for a session.
type SessionDetails struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"` // "complete" once paid
	AmountTotal   float64 `json:"amount_total"`
	PaymentMethod string  `json:"payment_method"`
	ProjectID     uint    `json:"project_id"`
	Quantity      int     `json:"quantity"`
	BuyerID       uint    `json:"buyer_id"`
}

// PaymentService talks to the external payment processor's REST API.
type PaymentService struct {
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewPaymentService creates a new payment processor client
func NewPaymentService(baseURL, apiKey, successURL, cancelURL string) *PaymentService {
	return &PaymentService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateSession opens a hosted checkout session for the cart and returns the
// session reference plus the redirect URL for the buyer.
func (s *PaymentService) CreateSession(cart CheckoutCart) (*CheckoutSession, error) {
	payload := map[string]interface{}{
		"success_url": s.successURL,
		"cancel_url":  s.cancelURL,
		"line_items": []map[string]interface{}{
			{
				"name":       cart.ProjectName,
				"quantity":   cart.Quantity,
				"unit_price": cart.UnitPrice,
			},
		},
		"metadata": map[string]interface{}{
			"project_id": cart.ProjectID,
			"quantity":   cart.Quantity,
			"buyer_id":   cart.BuyerID,
		},
	}

	var session CheckoutSession
	if err := s.post("/checkout/sessions", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession fetches the session state and its completed-payment details.
func (s *PaymentService) GetSession(sessionID string) (*SessionDetails, error) {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payment session %s not found", sessionID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment API error: status %d", resp.StatusCode)
	}

	var details SessionDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &details, nil
}

func (s *PaymentService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach payment API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("payment API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
