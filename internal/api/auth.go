package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/response"
	"carbon-market/pkg/logging"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	NIF      string `json:"nif"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	user, err := svc.Accounts.Register(req.Email, req.Password, req.Name, req.NIF)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.CreatedJSON(c, user)
}

// Login authenticates an account and returns a bearer token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if svc.Guard != nil {
		allowed, err := svc.Guard.AllowLogin(c.Request.Context(), req.Email)
		if err != nil {
			logging.Warnf("Login rate limiter unavailable: %v", err)
		} else if !allowed {
			response.ErrorJSON(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
	}

	user, err := svc.Accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	token, err := svc.Accounts.IssueToken(user)
	if err != nil {
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	response.SuccessJSON(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the acting account's profile
func GetMe(c *gin.Context) {
	user, err := svc.Accounts.GetUser(middleware.CurrentUser(c).ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessJSON(c, user)
}
