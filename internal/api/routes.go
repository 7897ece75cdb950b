package api

import (
	"carbon-market/internal/middleware"
	"carbon-market/internal/models"
	"carbon-market/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles the service layer consumed by the handlers.
type Services struct {
	Accounts *services.AccountService
	Projects *services.ProjectService
	Credits  *services.CreditService
	Checkout *services.CheckoutService
	Tickets  *services.TicketService
	Reports  *services.ReportService
	Guard    *services.RedisReplayGuard
}

var svc *Services

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, s *Services) {
	svc = s

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/auth/register", Register)
		api.POST("/auth/login", Login)
		api.GET("/marketplace", GetMarketplace)

		// Payment collaborator webhook (authenticated by shared secret)
		api.POST("/payment/webhook", PaymentWebhook)

		// Authenticated routes
		auth := api.Group("")
		auth.Use(middleware.RequireAuth())
		{
			auth.GET("/me", GetMe)

			auth.POST("/projects", CreateProject)
			auth.GET("/projects/mine", GetMyProjects)
			auth.GET("/projects/:id", GetProject)
			auth.PUT("/projects/:id", UpdateProject)
			auth.DELETE("/projects/:id", DeleteProject)
			auth.PUT("/projects/:id/visibility", SetProjectVisibility)

			auth.GET("/projects/:id/credits", GetProjectCredits)
			auth.PUT("/projects/:id/listing", ListCreditsForSale)
			auth.PUT("/projects/:id/credits", UpdateCreditsInfo)
			auth.POST("/projects/:id/sell", SellCredits)
			auth.GET("/credits", GetMyCredits)

			auth.POST("/checkout", CreateCheckout)
			auth.GET("/transactions", GetMyTransactions)
			auth.GET("/transactions/all",
				middleware.RequireCapability(models.CapViewAllTransactions), GetAllTransactions)

			auth.POST("/tickets", CreateTicket)
			auth.GET("/tickets", GetTickets)
			auth.GET("/tickets/:id", GetTicket)
			auth.POST("/tickets/:id/messages", ReplyTicket)
			auth.PUT("/tickets/:id/status", SetTicketStatus)

			auth.POST("/reports", RequestReport)
			auth.GET("/reports", GetReports)
			auth.POST("/reports/:id/deliver",
				middleware.RequireCapability(models.CapDeliverReports), DeliverReport)

			// Administrative review routes
			admin := auth.Group("/admin")
			admin.Use(middleware.RequireCapability(models.CapApproveProjects))
			{
				admin.GET("/projects/pending", GetPendingProjects)
				admin.POST("/projects/:id/approve", ApproveProject)
				admin.POST("/projects/:id/deny", DenyProject)
				admin.POST("/projects/:id/credits", AddCredits)
			}
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "carbon-market",
		})
	})
}
