package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/database"
	apierrors "github.com/stwalsh4118/landledger/internal/errors"
	"github.com/stwalsh4118/landledger/internal/fxrate"
	"github.com/stwalsh4118/landledger/internal/handlers"
	"github.com/stwalsh4118/landledger/internal/logger"
	"github.com/stwalsh4118/landledger/internal/middleware"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/repository"
	"github.com/stwalsh4118/landledger/internal/scheduler"
	"github.com/stwalsh4118/landledger/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	fxRefreshJob    = "fx-refresh"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting LandLedger API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to prepare database schema", err, nil)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
		"idle":     db.Stats().IdleConns(),
	})

	// Exchange rates are refreshed in the background; requests only read the cache.
	fxClient := fxrate.NewClient(cfg.FX, log)
	fxCache := fxrate.NewCache(fxClient, cfg.FX.VolatilityDays, log)

	jobs, err := scheduler.New(log)
	if err != nil {
		log.Fatal("Failed to create scheduler", err, nil)
	}
	if err := jobs.Every(fxRefreshJob, cfg.FX.RefreshInterval, fxCache.Refresh, true); err != nil {
		log.Fatal("Failed to schedule exchange-rate refresh", err, map[string]interface{}{
			"interval": cfg.FX.RefreshInterval.String(),
		})
	}
	jobs.Start()

	rules := portfolio.AssessmentRules{
		HighInvestment:     cfg.Assessment.HighInvestment,
		ExpectedValuePerM2: cfg.Assessment.ExpectedValuePerM2,
		MarketPrices:       cfg.Assessment.MarketPrices,
	}

	parcelRepo := repository.NewParcelRepository(db)
	parcelService := services.NewParcelService(parcelRepo, rules, log)
	portfolioService := services.NewPortfolioService(parcelRepo, fxCache, cfg.Valuation, rules, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := apierrors.RegisterTranslations(v); err != nil {
			log.Warn("Validation messages fall back to defaults", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	router := gin.New()

	// Middleware order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log, "/health", "/health/ready"))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Health:    handlers.NewHealthHandler(db, cfg.Server.Env),
		Parcel:    handlers.NewParcelHandler(parcelService),
		Portfolio: handlers.NewPortfolioHandler(portfolioService),
		Valuation: handlers.NewValuationHandler(cfg.Valuation, rules),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}
	if err := jobs.Stop(); err != nil {
		log.Error("Scheduler did not stop cleanly", err, nil)
	}

	log.Info("Server exited", nil)
}
