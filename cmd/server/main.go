package main

import (
	"log"

	"carbon-market/internal/api"
	"carbon-market/internal/config"
	"carbon-market/internal/database"
	"carbon-market/internal/scheduler"
	"carbon-market/internal/services"
	"carbon-market/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}

	// Initialize logging
	logging.InitLogging(config.AppConfig.Mode == "debug")
	defer logging.Sync()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()

	// Wire external collaborators
	email := services.NewEmailService(
		config.AppConfig.BrevoAPIKey,
		config.AppConfig.BrevoFromEmail,
		config.AppConfig.BrevoFromName,
	)
	payments := services.NewPaymentService(
		config.AppConfig.PaymentAPIURL,
		config.AppConfig.PaymentAPIKey,
		config.AppConfig.PaymentSuccessURL,
		config.AppConfig.PaymentCancelURL,
	)
	var nif services.NIFValidator
	if config.AppConfig.NIFValidationURL != "" {
		nif = services.NewNIFService(config.AppConfig.NIFValidationURL)
	}
	guard := services.NewRedisReplayGuard(database.GetRedis())

	// Wire the service layer
	credits := services.NewCreditService(db)
	svcs := &api.Services{
		Accounts: services.NewAccountService(db, nif, config.AppConfig.JWTSecret),
		Projects: services.NewProjectService(db, credits, email),
		Credits:  credits,
		Checkout: services.NewCheckoutService(db, credits, payments, guard, email),
		Tickets:  services.NewTicketService(db),
		Reports:  services.NewReportService(db, email),
		Guard:    guard,
	}

	// Start the credit expiry scheduler
	sched, err := scheduler.NewManager(credits, config.AppConfig)
	if err != nil {
		log.Fatal("Failed to create scheduler:", err)
	}
	sched.Start()
	defer sched.Stop()

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	api.SetupRoutes(r, svcs)

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
