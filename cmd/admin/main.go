package main

import (
	"context"
	"os"

	"clipper/internal/cache"
	"clipper/internal/config"
	"clipper/internal/database"
	"clipper/internal/logger"
	"clipper/internal/queue"
	"clipper/internal/repository"
	"clipper/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the shell environment is used instead.
	_ = godotenv.Load()
	if err := newRootCmd(openDeps).Execute(); err != nil {
		os.Exit(1)
	}
}

// openDeps connects to the database and job queue the same way the API does.
func openDeps(ctx context.Context) (*adminDeps, func(), error) {
	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	jobQueue, closeQueue, err := queue.Open(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var dashboardCache cache.DashboardCache = cache.NoopDashboardCache{}
	closeRedis := func() error { return nil }
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			closeQueue()
			db.Close()
			return nil, nil, err
		}
		closeRedis = rdb.Close
		dashboardCache = cache.NewRedisDashboardCache(rdb, cfg.DashboardCacheTTL())
	}

	files := repository.NewUploadedFileRepo(db)
	deps := &adminDeps{
		files:      files,
		users:      repository.NewUserRepo(db),
		processing: service.NewProcessingService(files, jobQueue, dashboardCache, cfg.SubmitClaimLease(), log),
		cache:      dashboardCache,
	}
	cleanup := func() {
		closeRedis()
		closeQueue()
		db.Close()
	}
	return deps, cleanup, nil
}
