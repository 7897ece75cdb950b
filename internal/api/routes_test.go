package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"carbon-market/internal/config"
	"carbon-market/internal/database"
	"carbon-market/internal/models"
	"carbon-market/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "api.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	database.DB = db

	config.AppConfig = &config.Config{
		JWTSecret:            "test-secret",
		PaymentWebhookSecret: "hook-secret",
		ServiceName:          "Carbon Market",
	}

	credits := services.NewCreditService(db)
	r := gin.New()
	SetupRoutes(r, &Services{
		Accounts: services.NewAccountService(db, nil, config.AppConfig.JWTSecret),
		Projects: services.NewProjectService(db, credits, nil),
		Credits:  credits,
		Checkout: services.NewCheckoutService(db, credits, nil, nil, nil),
		Tickets:  services.NewTicketService(db),
		Reports:  services.NewReportService(db, nil),
	})
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), Name: "Seeded", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password_hash")

	token := loginToken(t, r, "alice@example.com", "password123")
	assert.NotEmpty(t, token)

	w = doJSON(t, r, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice Again",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/projects/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/credits", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectReviewFlow(t *testing.T) {
	r, db := setupTestRouter(t)
	seedUser(t, db, "owner@example.com", models.RoleUser)
	seedUser(t, db, "admin@example.com", models.RoleAdmin)

	ownerToken := loginToken(t, r, "owner@example.com", "password123")
	adminToken := loginToken(t, r, "admin@example.com", "password123")

	price := 12.5
	w := doJSON(t, r, http.MethodPost, "/api/projects", ownerToken, gin.H{
		"name":             "Mangrove Restoration",
		"description":      "Coastal replanting",
		"certification":    "Gold Standard",
		"price_per_credit": price,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	projectID := created.Data.ID
	require.NotZero(t, projectID)
	assert.Equal(t, models.ProjectStatusUnderReview, created.Data.Status)

	// Review routes are gated on the approval capability.
	w = doJSON(t, r, http.MethodGet, "/api/admin/projects/pending", ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/projects/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mangrove Restoration")

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/admin/projects/%d/approve", projectID), adminToken, gin.H{
		"credits": 10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&models.Credit{}).Where("project_id = ?", projectID).Count(&count).Error)
	assert.EqualValues(t, 10, count)

	// A confirmed project made visible shows up on the public marketplace.
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/projects/%d/visibility", projectID), ownerToken, gin.H{
		"visible": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/marketplace", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Mangrove Restoration")
}

func TestWebhookSecretValidation(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/payment/webhook", "", gin.H{
		"event":      "checkout.session.completed",
		"session_id": "cs_1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook",
		bytes.NewBufferString(`{"event": "invoice.paid", "session_id": "cs_1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	// Unhandled events are acknowledged without touching anything.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionsAuditCapability(t *testing.T) {
	r, db := setupTestRouter(t)
	seedUser(t, db, "user@example.com", models.RoleUser)
	seedUser(t, db, "admin@example.com", models.RoleAdmin)

	userToken := loginToken(t, r, "user@example.com", "password123")
	adminToken := loginToken(t, r, "admin@example.com", "password123")

	w := doJSON(t, r, http.MethodGet, "/api/transactions/all", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/transactions/all", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/transactions", userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
