package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"clipper/internal/cache"
	"clipper/internal/config"
	"clipper/internal/database"
	"clipper/internal/logger"
	"clipper/internal/orchestrator/resubmit"
	"clipper/internal/queue"
	"clipper/internal/repository"
	"clipper/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	mode := flag.String("mode", "resubmit", "Orchestrator mode: resubmit")
	interval := flag.Duration("interval", time.Minute, "time between sweeps")
	flag.Parse()

	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	jobQueue, closeQueue, err := queue.Open(ctx, cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open job queue")
	}
	defer closeQueue()

	var dashboardCache cache.DashboardCache = cache.NoopDashboardCache{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		dashboardCache = cache.NewRedisDashboardCache(rdb, cfg.DashboardCacheTTL())
	}

	files := repository.NewUploadedFileRepo(db)
	processing := service.NewProcessingService(files, jobQueue, dashboardCache, cfg.SubmitClaimLease(), logger)

	var runErr error
	switch *mode {
	case "resubmit":
		runErr = resubmit.Run(ctx, logger, files, processing, cfg.SubmitClaimLease(), *interval)
	default:
		logger.Fatal().Msgf("Invalid mode: %s", *mode)
	}

	if runErr != nil {
		logger.Fatal().Msgf("%s orchestrator failed: %v", *mode, runErr)
	}
	logger.Info().Msgf("%s orchestrator stopped gracefully", *mode)
}
