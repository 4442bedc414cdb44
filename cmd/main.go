package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nimsdash/authgate/config"
	"github.com/nimsdash/authgate/internal/core/domain"
	"github.com/nimsdash/authgate/internal/core/repository"
	"github.com/nimsdash/authgate/internal/logger"
	logicv1 "github.com/nimsdash/authgate/internal/logic/v1"
	webv1 "github.com/nimsdash/authgate/internal/web/v1"
	"github.com/nimsdash/authgate/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	logger.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	ctx := context.Background()

	// User directory backend. A missing tab or table fails startup.
	var directory domain.UserDirectory
	switch cfg.Directory.Backend {
	case config.DirectoryBackendSheets:
		dir, err := repository.NewSheetsUserDirectory(ctx, cfg.Directory.SheetID, cfg.Directory.SheetName, cfg.Directory.CredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets user directory")
		}
		if err := dir.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("tab", cfg.Directory.SheetName).Msg("Users tab unavailable")
		}
		directory = dir
		log.Info().Str("tab", cfg.Directory.SheetName).Msg("Sheets user directory ready")
	case config.DirectoryBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Directory.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		dir := repository.NewPgxUserDirectory(pool, cfg.Directory.UsersTable)
		if err := dir.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("table", cfg.Directory.UsersTable).Msg("Users table unavailable")
		}
		directory = dir
		log.Info().Str("table", cfg.Directory.UsersTable).Msg("Postgres user directory ready")
	}

	// Session and asset cache backend.
	var cache domain.Cache
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Session.RedisAddr).Msg("Failed to connect to redis")
		}
		defer client.Close()
		cache = repository.NewRedisCache(client, "authgate")
		log.Info().Str("addr", cfg.Session.RedisAddr).Msg("Redis cache ready")
	default:
		mc := repository.NewMemoryCache()
		defer mc.Close()
		cache = mc
		log.Info().Msg("In-memory cache ready")
	}

	authService := logicv1.NewAuthService(directory, cache, cfg.SessionTTL())

	var logoService *logicv1.LogoService
	if cfg.Assets.LogoFileID != "" {
		blobs, err := repository.NewMinioBlobStore(cfg.Assets)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create blob store")
		}
		logoService = logicv1.NewLogoService(blobs, cache, cfg.Assets.LogoFileID, cfg.AssetCacheTTL())
		log.Info().Str("file_id", cfg.Assets.LogoFileID).Msg("Logo asset cache ready")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware(cfg.Service.Name))

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (shape-compatible with the dashboard front end)
	handler := webv1.NewHandler(authService, logoService)
	handler.RegisterRoutes(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:    ":" + cfg.Service.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting auth gateway")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-signalCtx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation before closing listeners.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
