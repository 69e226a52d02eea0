package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/config"
	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/handler"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/cache"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/client"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/filestore"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/notify"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/observability"
	"github.com/cleanslate/cleanslate-api-go/internal/infra/resilience"
	"github.com/cleanslate/cleanslate-api-go/internal/port"
	"github.com/cleanslate/cleanslate-api-go/internal/service"
	"github.com/cleanslate/cleanslate-api-go/internal/store"

	"go.uber.org/zap"
)

// statePrefix matches the storage namespace of the frontend, so a shared
// volume can be inspected with the same tooling.
const statePrefix = "cleanslate_v3_"

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_dataset_api", cfg.UseDatasetAPI),
		zap.String("state_dir", cfg.StateDir),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cleanslate-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	fileStore, err := filestore.New(cfg.StateDir, statePrefix, logger)
	if err != nil {
		logger.Fatal("failed to open state dir", zap.Error(err))
	}

	// --- Cache ---
	analyticsCache := cache.New[domain.AnalyticsSummary](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	cb := resilience.NewCircuitBreaker("dataset-api")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var subsClient port.SubscriptionsFetcher
	var emailsClient port.EmailsFetcher
	if cfg.UseDatasetAPI && cfg.DatasetAPIURL != "" {
		logger.Info("using dataset API as seed backend",
			zap.String("dataset_api_url", cfg.DatasetAPIURL),
		)
		subsClient = client.NewSubscriptionsClient(httpClient, cfg.DatasetAPIURL, cb, resilienceCfg)
		emailsClient = client.NewEmailsClient(httpClient, cfg.DatasetAPIURL, cb, resilienceCfg)
	} else {
		logger.Info("using bundled seed data")
	}

	// --- Seed & state ---
	seed := domain.DefaultSeed()
	if cfg.SeedFile != "" {
		loaded, err := domain.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Warn("seed file unreadable, using defaults",
				zap.String("path", cfg.SeedFile),
				zap.Error(err))
		} else {
			seed = loaded
		}
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	initial := service.BootstrapState(bootCtx, fileStore, subsClient, emailsClient, seed, metrics, logger)
	bootCancel()

	st := store.New(initial, fileStore, logger)

	// --- Notifications ---
	var notifier port.Notifier
	if wh := notify.NewWebhook(cfg.NotifyWebhookURL, cfg.HTTPTimeout, cfg.MaxConcurrency, logger); wh != nil {
		notifier = wh
		logger.Info("webhook notifications enabled")
	}

	// --- Services ---
	declutterSvc := service.NewDeclutterService(st, notifier, metrics, logger)
	analyticsSvc := service.NewAnalytics(st, analyticsCache, metrics, logger)
	assistantSvc := service.NewAssistant(st, analyticsSvc, metrics, logger)
	detectorSvc := service.NewDetector(logger)
	authSvc := service.NewAuthService(fileStore, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Declutter: declutterSvc,
		Analytics: analyticsSvc,
		Assistant: assistantSvc,
		Detector:  detectorSvc,
		Auth:      authSvc,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
