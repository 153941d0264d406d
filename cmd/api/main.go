package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/config"
	"github.com/jwalitptl/booking-api/internal/handler/decision"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	prom "github.com/jwalitptl/booking-api/internal/handler/prometheus"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/guarded"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	"github.com/jwalitptl/booking-api/pkg/auth"
	"github.com/jwalitptl/booking-api/pkg/logger"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/ratelimit"
)

const metricsNamespace = "booking"

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(metricsNamespace, registry)

	// Initialize repositories
	ownershipRepo := guarded.NewOwnership(postgres.NewOwnershipRepository(db), cfg.Authz.Lookups, m)
	accountRepo := postgres.NewAccountRepository(db)
	verificationRepo := postgres.NewVerificationRepository(db)

	// Authorization
	table, err := authz.DefaultTable(authz.NewPredicates(ownershipRepo))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid policy table")
	}
	engine := authz.NewEngine(table, m, appLogger)

	limiter, closeLimiter, err := newReviewLimiter(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review rate limiter")
	}
	defer closeLimiter()

	verification := middleware.VerificationGateConfig{
		ProtectedRoutes: cfg.Authz.ProtectedRoutes,
		PrivilegedRole:  model.Role(cfg.Authz.PrivilegedRole),
	}
	approval, err := middleware.NewApprovalGate(verificationRepo, verification, m)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid protected routes")
	}

	r, err := router.NewRouter(router.RouterConfig{
		Mode:              cfg.Server.Mode,
		Verification:      verification,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, router.Dependencies{
		Auth:          middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT), accountRepo),
		Table:         table,
		Engine:        engine,
		Verification:  verificationRepo,
		Approval:      approval,
		ReviewLimiter: limiter,
		Metrics:       m,
		Health:        health.NewHandler(db),
		Prometheus:    prom.New(metricsNamespace, registry),
		Decision:      decision.NewHandler(engine, approval),
	}, router.DefaultRoutes(cfg.Authz.ActorHeader))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// newReviewLimiter picks the review submission limiter. The memory backend
// is only correct for a single instance.
func newReviewLimiter(cfg *config.Config) (ratelimit.Limiter, func(), error) {
	switch cfg.RateLimit.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if cfg.Redis.PoolSize > 0 {
			opts.PoolSize = cfg.Redis.PoolSize
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return ratelimit.NewRedis(client, "ratelimit:reviews", cfg.RateLimit.Reviews), func() { _ = client.Close() }, nil
	default:
		log.Warn().Msg("using in-memory review rate limiter; limits are per instance")
		mem := ratelimit.NewMemory(cfg.RateLimit.Reviews)
		return mem, mem.Close, nil
	}
}
