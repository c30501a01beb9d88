package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/app"
	"github.com/benvon/daily-agent/internal/config"
	"github.com/benvon/daily-agent/internal/handlers"
	"github.com/benvon/daily-agent/internal/logger"
	"github.com/benvon/daily-agent/internal/middleware"
	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/queue"
	"github.com/benvon/daily-agent/internal/scheduler"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/benvon/daily-agent/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/jmhodges/clock"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "daily-agent"

var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("state_backend", cfg.StateBackend),
		zap.Bool("queue_enabled", cfg.QueueEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracingEnabled := cfg.OTELEnabled && cfg.OTELEndpoint != ""
	if cfg.OTELEnabled && !tracingEnabled {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
	}
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:     tracingEnabled,
		ServiceName: serviceName,
		Version:     version,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		tracingEnabled = false
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		zapLogger.Fatal("failed_to_load_seed_file", zap.Error(err))
	}

	persister, err := app.OpenPersister(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_open_state_backend", zap.Error(err))
	}
	zapLogger.Info("opened_state_backend", zap.String("backend", cfg.StateBackend))

	var rateLimitRedis *redis.Client
	if cfg.RedisURL != "" {
		rateLimitRedis, err = store.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := rateLimitRedis.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	clk := clock.New()

	var jobQueue queue.JobQueue
	var notifier notify.Notifier
	if cfg.QueueEnabled() {
		rabbit, err := app.ConnectQueue(ctx, cfg, zapLogger, 10)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := rabbit.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		jobQueue = rabbit
		notifier = notify.Multi{notify.NewLogNotifier(zapLogger), notify.NewQueueNotifier(rabbit, clk)}

		dlqGC := queue.NewGarbageCollector(rabbit, clk, time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
	} else {
		notifier, err = app.BuildDeliveryNotifier(cfg, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_create_notifier", zap.Error(err))
		}
	}

	fallback, err := app.BuildFallback(cfg, zapLogger, debugMode)
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_provider_fallback_disabled", zap.Error(err))
		fallback = nil
	}

	outbox := notify.NewOutbox(clk)
	activity := middleware.NewActivityTracker(clk, cfg.ActivityWindow)

	a, err := agent.New(ctx, agent.Options{
		Persister:     persister,
		Notifier:      notifier,
		Speaker:       outbox,
		Sounder:       outbox,
		Fallback:      fallback,
		Clock:         clk,
		Logger:        zapLogger,
		Presence:      activity.Present,
		AlarmInterval: cfg.AlarmInterval,
		SpeechDelay:   cfg.SpeechDelay,
		SeedSettings:  seed.Settings,
		SeedPatterns:  seed.Patterns,
	})
	if err != nil {
		zapLogger.Fatal("failed_to_load_agent", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Warn("failed_to_close_state_backend", zap.Error(err))
		}
	}()

	runner := scheduler.NewRunner(a, clk, zapLogger, cfg.TickInterval, cfg.HeartbeatInterval)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("scheduler_stopped_with_error", zap.Error(err))
		}
	}()

	rateLimitMW, err := middleware.RateLimit(cfg.RateLimit, rateLimitRedis)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order; the first registered is outermost.
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.FrontendURL), zapLogger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Audit(zapLogger))

	healthChecker := handlers.NewHealthChecker(app.HealthChecks(persister, jobQueue))
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	openAPIHandler := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.APIToken(cfg.APIToken))
	apiRouter.Use(middleware.ActivityTracking(activity))
	apiRouter.Use(rateLimitMW)

	handlers.NewChatHandler(a, outbox, zapLogger).RegisterRoutes(apiRouter)
	handlers.NewTaskHandler(a, zapLogger).RegisterRoutes(apiRouter)
	handlers.NewSettingsHandler(a).RegisterRoutes(apiRouter)

	// CORS has already answered preflights by the time this runs
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   35 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"version":%q,"timestamp":%q}`, version, time.Now().UTC().Format(time.RFC3339))
}
