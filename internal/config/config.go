package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// JWT configuration
	JWTSecret string

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Payment processor configuration
	PaymentAPIURL        string
	PaymentAPIKey        string
	PaymentSuccessURL    string
	PaymentCancelURL     string
	PaymentWebhookSecret string

	// Tax-ID validation configuration
	NIFValidationURL string

	// Credit expiry scan interval (minutes)
	ExpiryScanMinutes int

	ServiceName string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file; ignore error if it doesn't exist
	_ = godotenv.Load()

	AppConfig = &Config{
		Port:                 getEnv("PORT", "8080"),
		Mode:                 getEnv("GIN_MODE", "debug"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:            getEnv("JWT_SECRET", "carbon-market-secret"),
		BrevoAPIKey:          getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:       getEnv("BREVO_FROM_EMAIL", "noreply@carbon-market.local"),
		BrevoFromName:        getEnv("BREVO_FROM_NAME", "Carbon Market"),
		PaymentAPIURL:        getEnv("PAYMENT_API_URL", "https://api.payment.example.com/v1"),
		PaymentAPIKey:        getEnv("PAYMENT_API_KEY", ""),
		PaymentSuccessURL:    getEnv("PAYMENT_SUCCESS_URL", "http://localhost:4200/checkout/success"),
		PaymentCancelURL:     getEnv("PAYMENT_CANCEL_URL", "http://localhost:4200/checkout/cancel"),
		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		NIFValidationURL:     getEnv("NIF_VALIDATION_URL", ""),
		ExpiryScanMinutes:    getEnvInt("EXPIRY_SCAN_MINUTES", 60),
		ServiceName:          getEnv("SERVICE_NAME", "Carbon Market"),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
