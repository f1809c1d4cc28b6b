// Package main is the entry point for the FoodiePro API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/foodiepro/api/internal/api"
	"github.com/foodiepro/api/internal/auth"
	"github.com/foodiepro/api/internal/config"
	"github.com/foodiepro/api/internal/dataset"
	"github.com/foodiepro/api/internal/health"
	"github.com/foodiepro/api/internal/middleware"
	"github.com/foodiepro/api/internal/ranking"
	"github.com/foodiepro/api/internal/tracing"
)

const serviceName = "foodiepro-api"

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("FoodiePro API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Tracing
	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	rankMetrics := ranking.NewMetrics()
	if err := rankMetrics.Register(registry); err != nil {
		logger.Error("failed to register ranking metrics", "error", err)
		os.Exit(1)
	}

	// Ranking configuration with optional calibration overrides.
	rankCfg, err := ranking.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		logger.Error("failed to load ranking calibration", "error", err)
		os.Exit(1)
	}

	// Dataset loader: Postgres when configured, CSV files otherwise.
	ctx := context.Background()
	var loader dataset.Loader
	var dbChecker api.HealthChecker
	if cfg.DatabaseURL != "" {
		db, err := dataset.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		loader = dataset.NewPostgresLoader(db)
		dbChecker = health.NewDBChecker(db)
	} else {
		loader = &dataset.CSVLoader{
			PlacesPath:  cfg.PlacesCSV,
			ReviewsPath: cfg.ReviewsCSV,
		}
	}

	store := dataset.NewStore()
	snap, err := loader.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	store.Swap(snap)
	logger.Info("dataset loaded", "places", len(snap.Places), "reviews", len(snap.Reviews))

	// Rate limiting: Redis-backed when configured, in-memory otherwise.
	var limitStore middleware.RateLimitStore
	var redisChecker api.HealthChecker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		limitStore = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(httpMetrics)
		redisChecker = health.NewRedisChecker(redisClient)
	} else {
		memStore := middleware.NewInMemoryRateLimitStore()
		limitStore = memStore

		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				memStore.Cleanup()
			}
		}()
	}

	jwtService := auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)

	recommendHandlers := api.NewRecommendHandlers(store, rankCfg, rankMetrics, logger)
	reloadHandlers := api.NewReloadHandlers(store, loader, jwtService, logger)
	healthHandlers := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:    dbChecker,
		RedisChecker: redisChecker,
		Store:        store,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	globalLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.GlobalRateLimit,
		WindowDuration:    time.Minute,
	}
	recommendLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RecommendRateLimit,
		WindowDuration:    time.Minute,
	}

	// The recommendation endpoint carries its own tighter limit on top of
	// the global one.
	recommendChain := middleware.RateLimiter(limitStore, recommendLimit, middleware.IPKeyFunc(), httpMetrics)(
		http.HandlerFunc(recommendHandlers.Recommend))
	mux.Handle("/recommend", recommendChain)
	mux.HandleFunc("/internal/reload", reloadHandlers.Reload)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			errCtx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, errCtx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"foodiepro-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware chain, outermost first:
	// RequestID -> Tracing -> Logging -> CORS -> global RateLimiter -> HTTPMetrics
	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.RateLimiter(limitStore, globalLimit, middleware.IPKeyFunc(), httpMetrics)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins))(handler)
	handler = middleware.Logging(logger)(handler)
	if tp.IsEnabled() {
		handler = middleware.Tracing(serviceName)(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer provider", "error", err)
	}

	logger.Info("server stopped")
}
