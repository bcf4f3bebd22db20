package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipper/internal/api/v1/router"
	"clipper/internal/config"
	"clipper/internal/logger"
	"clipper/internal/service"

	"github.com/joho/godotenv"
)

// @title Clipper API
// @version 1.0
// @description Uploads, clip playback and credit purchases.
// @host localhost:8080
// @BasePath /v1
// @Schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	// 2. Resolve Stripe secrets from Secret Manager when configured
	if cfg.SecretManagerProjectID != "" {
		if err := loadStripeSecrets(ctx, cfg); err != nil {
			logger.Fatal().Err(err).Msg("Failed to load Stripe secrets from Secret Manager")
		}
		logger.Info().Msg("Stripe secrets loaded from Secret Manager")
	}

	// 3. Build router
	r, cleanup, err := router.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build router")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Listen failed")
		}
	}()

	// 4. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server shut down gracefully")
}

func loadStripeSecrets(ctx context.Context, cfg *config.Config) error {
	sm, err := service.NewSecretManagerService(ctx, cfg.SecretManagerProjectID)
	if err != nil {
		return err
	}
	defer sm.Close()

	if cfg.StripeSecretKey, err = sm.GetSecret(ctx, "stripe-secret-key"); err != nil {
		return err
	}
	if cfg.StripeWebhookSecret, err = sm.GetSecret(ctx, "stripe-webhook-secret"); err != nil {
		return err
	}
	return nil
}
