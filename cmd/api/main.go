package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/ytproxy/internal/api/handler"
	"github.com/hszk-dev/ytproxy/internal/api/middleware"
	"github.com/hszk-dev/ytproxy/internal/config"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/cache"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/metrics"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/tracing"
	"github.com/hszk-dev/ytproxy/internal/infrastructure/youtube"
	"github.com/hszk-dev/ytproxy/internal/usecase"
)

const (
	serviceName    = "YouTube Tools API"
	serviceVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.Endpoint = cfg.Tracing.JaegerEndpoint
	tracingCfg.ServiceVersion = serviceVersion
	shutdownTracing, err := tracing.Setup(tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	transcriptCache := cache.New(cache.Config{
		Enabled:       cfg.Cache.Enabled,
		TTL:           cfg.Cache.TTL(),
		MaxSize:       cfg.Cache.MaxSize,
		SweepInterval: cfg.Cache.SweepInterval,
	}, cache.WithLogger(logger))
	defer func() { _ = transcriptCache.Close() }()
	prometheus.MustRegister(metrics.NewCacheCollector(transcriptCache.Stats))

	ytCfg := youtube.DefaultConfig()
	ytCfg.Timeout = cfg.Upstream.Timeout
	ytCfg.RateLimit = cfg.Upstream.RateLimit
	ytCfg.Burst = cfg.Upstream.Burst
	ytCfg.Proxy = youtube.ProxyConfig{
		Type:             cfg.Proxy.Type,
		URL:              cfg.Proxy.URL,
		HTTP:             cfg.Proxy.HTTP,
		HTTPS:            cfg.Proxy.HTTPS,
		WebshareUsername: cfg.Proxy.WebshareUsername,
		WebsharePassword: cfg.Proxy.WebsharePassword,
	}
	ytClient, err := youtube.NewClient(ytCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create youtube client: %w", err)
	}

	fetcherCfg := usecase.DefaultTranscriptFetcherConfig()
	fetcherCfg.Logger = logger
	fetcher := usecase.NewTranscriptFetcher(ytClient, transcriptCache, fetcherCfg)

	r := setupRouter(routerDeps{
		logger:      logger,
		videoSvc:    usecase.NewVideoService(fetcher, ytClient),
		reporter:    usecase.NewCacheReporter(transcriptCache, logger),
		corsOrigins: cfg.CORS.Origins,
		adminSecret: cfg.Admin.JWTSecret,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.Bool("cache_enabled", cfg.Cache.Enabled),
			slog.Int("cache_max_size", cfg.Cache.MaxSize),
			slog.Int("cache_ttl_seconds", cfg.Cache.TTLSeconds),
			slog.String("proxy_type", cfg.Proxy.Type),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

type routerDeps struct {
	logger      *slog.Logger
	videoSvc    usecase.VideoService
	reporter    usecase.CacheReporter
	corsOrigins []string
	adminSecret string
}

func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Metrics)
	if len(deps.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	yt := handler.NewYouTubeHandler(deps.videoSvc, deps.logger)
	svc := handler.NewServiceHandler(deps.reporter, handler.ServiceInfo{
		Name:    serviceName,
		Version: serviceVersion,
	}, clock.New())

	r.Get("/", svc.Root)
	r.Get("/health", svc.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/youtube", func(r chi.Router) {
		r.Get("/metadata", yt.Metadata)
		r.Get("/captions", yt.Captions)
		r.Get("/timestamps", yt.Timestamps)
	})

	r.Route("/service", func(r chi.Router) {
		r.Get("/info", svc.Info)
		r.Get("/status", svc.Status)
		r.Get("/cache", svc.CacheStats)
		r.With(middleware.AdminAuth(deps.adminSecret, deps.logger)).Delete("/cache", svc.ClearCache)
	})

	return r
}
