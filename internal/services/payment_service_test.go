package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentServiceCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://ok", payload["success_url"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "cs_42", "url": "https://pay.example.com/cs_42"}`))
	}))
	defer srv.Close()

	svc := NewPaymentService(srv.URL, "sk_test", "https://ok", "https://cancel")
	session, err := svc.CreateSession(CheckoutCart{ProjectID: 1, ProjectName: "Forest", Quantity: 2, UnitPrice: 10, BuyerID: 7})
	require.NoError(t, err)
	assert.Equal(t, "cs_42", session.ID)
	assert.Equal(t, "https://pay.example.com/cs_42", session.RedirectURL)
}

func TestPaymentServiceGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions/cs_42", r.URL.Path)
		w.Write([]byte(`{"id": "cs_42", "status": "complete", "amount_total": 20, "payment_method": "card", "project_id": 1, "quantity": 2, "buyer_id": 7}`))
	}))
	defer srv.Close()

	svc := NewPaymentService(srv.URL, "sk_test", "", "")
	details, err := svc.GetSession("cs_42")
	require.NoError(t, err)
	assert.Equal(t, "complete", details.Status)
	assert.Equal(t, 20.0, details.AmountTotal)
	assert.Equal(t, uint(1), details.ProjectID)
	assert.Equal(t, 2, details.Quantity)
	assert.Equal(t, uint(7), details.BuyerID)
}

func TestPaymentServiceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewPaymentService(srv.URL, "sk_test", "", "")
	_, err := svc.GetSession("missing")
	assert.Error(t, err)

	_, err = svc.CreateSession(CheckoutCart{})
	assert.Error(t, err)
}
