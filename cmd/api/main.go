package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/luckygiving/lottery-backend/api/routes"
	"github.com/luckygiving/lottery-backend/internal/config"
	"github.com/luckygiving/lottery-backend/internal/handlers"
	mongorepo "github.com/luckygiving/lottery-backend/internal/repositories/mongodb"
	"github.com/luckygiving/lottery-backend/internal/services"
	"github.com/luckygiving/lottery-backend/pkg/billing"
	"github.com/luckygiving/lottery-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.JWT.Secret == "" {
		slog.Error("JWT_SECRET must be configured")
		os.Exit(1)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongorepo.EnsureIndexes(indexCtx, db); err != nil {
		cancelIndex()
		slog.Error("Failed to ensure indexes", "error", err)
		os.Exit(1)
	}
	cancelIndex()

	// Repositories
	subscriberRepo := mongorepo.NewSubscriberRepository(db)
	subscriptionRepo := mongorepo.NewSubscriptionRepository(db)
	drawRepo := mongorepo.NewDrawRepository(db)
	entryRepo := mongorepo.NewEntryRepository(db)
	winnerRepo := mongorepo.NewWinnerRepository(db)
	rolloverRepo := mongorepo.NewRolloverRepository(db)
	ledgerRepo := mongorepo.NewLedgerRepository(db)
	charityRepo := mongorepo.NewCharityRepository(db)
	adminUserRepo := mongorepo.NewAdminUserRepository(db)
	systemConfigRepo := mongorepo.NewSystemConfigRepository(db)

	// Billing gateway
	gateway, err := billing.NewStripeGateway(cfg.Billing.APIKey, cfg.Billing.Timeout, cfg.Billing.MockAPI)
	if err != nil {
		slog.Error("Failed to initialize billing gateway", "error", err)
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(adminUserRepo, cfg.JWT)
	billingService := services.NewBillingService(subscriberRepo, subscriptionRepo, gateway)
	drawService := services.NewDrawService(drawRepo, entryRepo, subscriberRepo, rolloverRepo, systemConfigRepo, cfg.Draw)
	settlementService := services.NewSettlementService(drawRepo, entryRepo, winnerRepo, rolloverRepo, ledgerRepo)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Billing:    handlers.NewBillingHandler(billingService),
		Draw:       handlers.NewDrawHandler(drawService),
		Settlement: handlers.NewSettlementHandler(settlementService),
		Charity:    handlers.NewCharityHandler(charityRepo),
	}

	router := routes.SetupRouter(cfg, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
	slog.Info("Server exited")
}
