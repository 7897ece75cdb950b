package api

import (
	"carbon-market/internal/config"
	"carbon-market/internal/middleware"
	"carbon-market/internal/response"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest represents a purchase request
type CheckoutRequest struct {
	ProjectID uint `json:"project_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CreateCheckout opens a hosted checkout session for the buyer
func CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	session, err := svc.Checkout.CreateCheckout(req.ProjectID, user.ID, req.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, session)
}

// WebhookRequest represents the payment collaborator's completion callback
type WebhookRequest struct {
	Event     string `json:"event" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

// PaymentWebhook records a completed payment session: credit transfer and
// transaction row as one atomic effect.
func PaymentWebhook(c *gin.Context) {
	if secret := config.AppConfig.PaymentWebhookSecret; secret != "" {
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			response.ErrorJSON(c, http.StatusUnauthorized, "Invalid webhook secret")
			return
		}
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if req.Event != "checkout.session.completed" {
		// Acknowledge events we do not handle
		response.SuccessJSON(c, nil)
		return
	}

	record, err := svc.Checkout.HandleSessionCompleted(c.Request.Context(), req.SessionID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, record)
}

// GetMyTransactions lists the acting account's transactions
func GetMyTransactions(c *gin.Context) {
	user := middleware.CurrentUser(c)
	txs, err := svc.Checkout.TransactionsByUser(user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, txs)
}

// GetAllTransactions lists every transaction (audit capability required)
func GetAllTransactions(c *gin.Context) {
	txs, err := svc.Checkout.AllTransactions()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, txs)
}
