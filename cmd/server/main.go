package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/partyvault/partyvault/internal/adapter/http"
	"github.com/partyvault/partyvault/internal/adapter/http/handler"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	postgresRepo "github.com/partyvault/partyvault/internal/adapter/repository/postgres"
	redisRepo "github.com/partyvault/partyvault/internal/adapter/repository/redis"
	"github.com/partyvault/partyvault/internal/infrastructure/activityfeed"
	"github.com/partyvault/partyvault/internal/infrastructure/auth"
	"github.com/partyvault/partyvault/internal/infrastructure/config"
	"github.com/partyvault/partyvault/internal/infrastructure/logger"
	"github.com/partyvault/partyvault/internal/infrastructure/metrics"
	"github.com/partyvault/partyvault/internal/infrastructure/postgres"
	"github.com/partyvault/partyvault/internal/infrastructure/redis"
	"github.com/partyvault/partyvault/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	vaultRepo := postgresRepo.NewVaultRepository(pool)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool)
	holdingRepo := postgresRepo.NewHoldingRepository(pool)
	permissionRepo := postgresRepo.NewPermissionRepository(pool)
	activityRepo := postgresRepo.NewActivityRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	appMetrics := metrics.New()

	// Use cases
	vaultUC := usecase.NewVaultUseCase(vaultRepo, currencyRepo, permissionRepo, activityRepo, idGen)
	holdingUC := usecase.NewHoldingUseCase(vaultRepo, currencyRepo, holdingRepo, permissionRepo, activityRepo, idGen, cache)
	splitUC := usecase.NewSplitUseCase(txManager, vaultRepo, currencyRepo, holdingRepo, permissionRepo, activityRepo, idGen, retrier, cache, appMetrics)
	activityUC := usecase.NewActivityUseCase(activityRepo)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		VaultHandler:     handler.NewVaultHandler(vaultUC),
		HoldingHandler:   handler.NewHoldingHandler(holdingUC),
		SplitHandler:     handler.NewSplitHandler(splitUC),
		ActivityHandler:  handler.NewActivityHandler(activityUC),
		AuthHandler:      handler.NewAuthHandler(jwtManager),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		JWTManager:       jwtManager,
		RateLimiter:      rateLimiter,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Background: push new activity lines to the application log.
	broadcaster := activityfeed.NewBroadcaster(activityfeed.Config{
		ActivityRepo: activityRepo,
		Publisher:    activityfeed.NewLogPublisher(log),
		Logger:       log,
	})
	go func() {
		if err := broadcaster.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("activity broadcaster stopped")
		}
	}()

	// Background: reset per-IP limiter buckets so idle IPs do not accumulate.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			}
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
