package router

import (
	"context"
	"errors"
	"net/http"
	"strings"

	_ "clipper/docs"
	"clipper/internal/api/v1/handler"
	"clipper/internal/cache"
	"clipper/internal/config"
	"clipper/internal/database"
	"clipper/internal/middleware"
	"clipper/internal/queue"
	"clipper/internal/repository"
	"clipper/internal/service"
	"clipper/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// Handlers are the v1 route groups.
type Handlers struct {
	Upload    *handler.UploadHandler
	Clip      *handler.ClipHandler
	Dashboard *handler.DashboardHandler
	Billing   *handler.BillingHandler
	DLQ       *handler.DLQHandler
}

// New wires storage, queue, cache and services from cfg and returns the
// HTTP handler. cleanup releases every connection New opened.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn().Err(err).Msg("Error during cleanup")
			}
		}
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// 1. Database
	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, db.Close)

	// 2. Object storage
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	store := storage.NewS3Store(s3Client, cfg.S3Bucket)

	// 3. Job queue
	jobQueue, closeQueue, err := queue.Open(ctx, cfg, db)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeQueue)
	logger.Info().Str("backend", cfg.JobQueueBackend).Msg("Job queue initialized")

	// 4. Dashboard cache
	var dashboardCache cache.DashboardCache = cache.NoopDashboardCache{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rdb.Close)
		dashboardCache = cache.NewRedisDashboardCache(rdb, cfg.DashboardCacheTTL())
		logger.Info().Msg("Redis dashboard cache enabled")
	}

	// 5. Stripe
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return fail(errors.New("stripe secret key and webhook secret are required"))
	}
	gateway := service.NewStripeGateway(cfg.StripeSecretKey)
	catalog := service.NewCreditCatalog(cfg.StripeSmallCreditPack, cfg.StripeMediumCreditPack, cfg.StripeLargeCreditPack)

	validate := validator.New(validator.WithRequiredStructEnabled())

	// 6. Repositories, services and handlers
	userRepo := repository.NewUserRepo(db)
	fileRepo := repository.NewUploadedFileRepo(db)
	clipRepo := repository.NewClipRepo(db)
	creditRepo := repository.NewCreditRepo(db)
	dlqRepo := repository.NewDLQRepository(db)

	uploadSvc := service.NewUploadService(fileRepo, store, dashboardCache, cfg.UploadURLTTL(), logger)
	processingSvc := service.NewProcessingService(fileRepo, jobQueue, dashboardCache, cfg.SubmitClaimLease(), logger)
	clipSvc := service.NewClipService(clipRepo, fileRepo, store, dashboardCache, cfg.PlaybackURLTTL(), logger)
	dashboardSvc := service.NewDashboardService(userRepo, fileRepo, clipRepo, dashboardCache, logger)
	stripeSvc := service.NewStripeService(gateway, catalog, userRepo, creditRepo, dashboardCache, cfg.StripeWebhookSecret, cfg.AppBaseURL, logger)
	dlqSvc := service.NewDLQService(dlqRepo)

	handlers := Handlers{
		Upload:    handler.NewUploadHandler(uploadSvc, processingSvc, validate, logger),
		Clip:      handler.NewClipHandler(clipSvc, cfg.PlaybackURLTTL(), logger),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, logger),
		Billing:   handler.NewBillingHandler(stripeSvc, validate, logger),
		DLQ:       handler.NewDLQHandler(dlqSvc, logger),
	}
	return Mount(cfg, handlers, logger), cleanup, nil
}

// Mount registers the route groups under /v1 behind auth, CORS and
// request logging.
func Mount(cfg *config.Config, h Handlers, logger zerolog.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)
	pubsubAuthMiddleware := middleware.PubSubAuthMiddleware(cfg.IsLocalPubSub(), cfg.DLQEndpointURL, cfg.PubSubPushServiceAccountEmail, logger)

	apiV1Mux := http.NewServeMux()
	h.Upload.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Clip.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Dashboard.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Billing.RegisterRoutes(apiV1Mux, authMiddleware)
	h.DLQ.RegisterRoutes(apiV1Mux, pubsubAuthMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	mux.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Redirect /api/* to /v1/* for older clients.
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, "/v1/"+rest, http.StatusMovedPermanently)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppBaseURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux))
}
