package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/cardroom/internal/adapter/http/handler"
	"github.com/iho/cardroom/internal/adapter/http/middleware"
	"github.com/iho/cardroom/internal/infrastructure/auth"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
	"github.com/iho/cardroom/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	TableHandler     *handler.TableHandler
	SessionHandler   *handler.SessionHandler
	AdminHandler     *handler.AdminHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	JWTManager       *auth.JWTManager
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
	RateLimit        float64
	RateBurst        int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Metrics)
		r.Use(limiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Audit entries attribute actions to the token's user when present.
		if cfg.JWTManager != nil {
			r.Use(middleware.OptionalAuth(cfg.JWTManager))
		}

		// Accounts and wallet
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Delete("/{id}", cfg.AccountHandler.Close)
			r.Post("/{id}/deposit", cfg.AccountHandler.Deposit)
			r.Post("/{id}/withdraw", cfg.AccountHandler.Withdraw)
			r.Get("/{id}/transactions", cfg.AccountHandler.ListTransactions)
		})

		// Ledger entries
		r.Get("/transactions/{id}", cfg.AccountHandler.GetTransaction)

		// Payment gateway settlement webhook
		r.Post("/payments/settle", cfg.AccountHandler.Settle)

		// Tables and the lobby
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", cfg.TableHandler.List)
			r.Get("/{id}", cfg.TableHandler.Get)
			r.Post("/{id}/join", cfg.SessionHandler.Join)

			// Table lifecycle is operator-only when auth is enabled.
			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
					r.Use(middleware.RequireTableManager)
				}
				r.Post("/", cfg.TableHandler.Create)
				r.Delete("/{id}", cfg.TableHandler.Close)
			})
		})

		// Seat sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/{id}/leave", cfg.SessionHandler.Leave)
			r.Post("/{id}/stack", cfg.SessionHandler.StackDelta)
			r.Post("/{id}/heartbeat", cfg.SessionHandler.Heartbeat)
		})

		// Operator endpoints
		r.Route("/admin", func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
				r.Use(middleware.RequireTableManager)
			}
			r.Post("/reconcile", cfg.AdminHandler.Reconcile)
			r.Get("/audit-logs", cfg.AdminHandler.ListAuditLogs)
		})
	})

	return r
}
