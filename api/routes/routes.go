package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/luckygiving/lottery-backend/internal/config"
	"github.com/luckygiving/lottery-backend/internal/handlers"
	"github.com/luckygiving/lottery-backend/internal/middleware"
)

// Handlers bundles the HTTP handlers the router wires up
type Handlers struct {
	Auth       *handlers.AuthHandler
	Billing    *handlers.BillingHandler
	Draw       *handlers.DrawHandler
	Settlement *handlers.SettlementHandler
	Charity    *handlers.CharityHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/auth/register", h.Auth.Register)

		// Subscriber and billing reconciliation routes
		subscribers := protected.Group("/subscribers")
		{
			subscribers.GET("/:id", h.Billing.GetSubscriber)
			subscribers.POST("/:id/reconcile", h.Billing.Reconcile)
		}

		// Charity routes
		charities := protected.Group("/charities")
		{
			charities.GET("", h.Charity.GetCharities)
			charities.GET("/:id", h.Charity.GetCharityByID)
		}

		// Draw lifecycle routes
		draws := protected.Group("/draws")
		{
			draws.GET("", h.Draw.GetDraws)
			draws.GET("/:id", h.Draw.GetDrawByID)
			draws.GET("/label/:label", h.Draw.GetDrawByLabel)
			draws.POST("", h.Draw.ScheduleDraw)
			draws.POST("/:id/execute", h.Draw.ExecuteDraw)
			draws.POST("/:id/publish", h.Draw.PublishDraw)
			draws.POST("/:id/entries", h.Draw.SubmitEntry)
			draws.POST("/:id/winners/compute", h.Settlement.ComputeWinners)
			draws.GET("/:id/winners", h.Settlement.GetWinnersByDrawID)
		}

		// Winner verification and settlement routes
		winners := protected.Group("/winners")
		{
			winners.GET("/status/:status", h.Settlement.GetWinnersByStatus)
			winners.POST("/:id/verify", h.Settlement.Verify)
			winners.POST("/:id/settle", h.Settlement.Settle)
			winners.GET("/:id/ledger", h.Settlement.GetLedger)
		}
	}

	return router
}
