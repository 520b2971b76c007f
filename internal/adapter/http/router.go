package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/partyvault/partyvault/internal/adapter/http/handler"
	"github.com/partyvault/partyvault/internal/adapter/http/middleware"
	"github.com/partyvault/partyvault/internal/infrastructure/auth"
	"github.com/partyvault/partyvault/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	VaultHandler     *handler.VaultHandler
	HoldingHandler   *handler.HoldingHandler
	SplitHandler     *handler.SplitHandler
	ActivityHandler  *handler.ActivityHandler
	AuthHandler      *handler.AuthHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.GetCurrentUser)

			// Vaults
			r.Route("/vaults", func(r chi.Router) {
				r.Post("/", cfg.VaultHandler.Create)
				r.Get("/", cfg.VaultHandler.List)
				r.Get("/{id}", cfg.VaultHandler.Get)
				r.Post("/{id}/currencies", cfg.VaultHandler.AddCurrency)
				r.Get("/{id}/currencies", cfg.VaultHandler.ListCurrencies)
				r.Put("/{id}/common-currency", cfg.VaultHandler.SetCommonCurrency)
				r.Put("/{id}/permissions", cfg.VaultHandler.GrantPermission)
				r.Post("/{id}/entries", cfg.HoldingHandler.RecordEntry)
				r.Get("/{id}/entries", cfg.HoldingHandler.ListEntries)
				r.Get("/{id}/balances", cfg.HoldingHandler.Balances)
				r.Post("/{id}/split", cfg.SplitHandler.Split)
				r.Get("/{id}/activity", cfg.ActivityHandler.ListByVault)
			})
		})
	})

	return r
}
