package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cardroom/internal/adapter/http"
	"github.com/iho/cardroom/internal/adapter/http/handler"
	"github.com/iho/cardroom/internal/adapter/payment"
	postgresRepo "github.com/iho/cardroom/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cardroom/internal/adapter/repository/redis"
	"github.com/iho/cardroom/internal/infrastructure/auth"
	"github.com/iho/cardroom/internal/infrastructure/config"
	"github.com/iho/cardroom/internal/infrastructure/eventpublisher"
	"github.com/iho/cardroom/internal/infrastructure/logging"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
	"github.com/iho/cardroom/internal/infrastructure/postgres"
	"github.com/iho/cardroom/internal/infrastructure/redis"
	"github.com/iho/cardroom/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	appLogger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics registry
	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	tableRepo := postgresRepo.NewTableRepository(pool)
	sessionRepo := postgresRepo.NewSessionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Payment gateway and KYC
	gateway := payment.NewGateway(cfg.PaymentSettleDelay, appLogger.Component("payment"))
	kyc := payment.NewStaticKycChecker()

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(usecase.BalanceConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		TxnRepo:     txnRepo,
		SessionRepo: sessionRepo,
		OutboxRepo:  outboxRepo,
		AuditRepo:   auditRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Kyc:         kyc,
		Gateway:     gateway,
		Metrics:     m,
	})
	gateway.SetSettler(balanceUC)

	seatingUC := usecase.NewSeatingUseCase(usecase.SeatingConfig{
		TxManager:      txManager,
		TableRepo:      tableRepo,
		SessionRepo:    sessionRepo,
		TxnRepo:        txnRepo,
		AccountRepo:    accountRepo,
		OutboxRepo:     outboxRepo,
		AuditRepo:      auditRepo,
		Balance:        balanceUC,
		IDGen:          idGen,
		Cache:          cache,
		Metrics:        m,
		SeatMultiplier: cfg.SeatMultiplier,
		IdleTimeout:    cfg.SessionIdleTimeout,
	})

	tableUC := usecase.NewTableUseCase(usecase.TableConfig{
		TxManager:   txManager,
		TableRepo:   tableRepo,
		SessionRepo: sessionRepo,
		Seating:     seatingUC,
		AuditRepo:   auditRepo,
		IDGen:       idGen,
		Cache:       cache,
		Metrics:     m,
	})

	ledgerUC := usecase.NewLedgerUseCase(accountRepo, txnRepo, auditRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, txnRepo, tableRepo, sessionRepo, m)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(ledgerUC, balanceUC)
	tableHandler := handler.NewTableHandler(tableUC)
	sessionHandler := handler.NewSessionHandler(seatingUC)
	adminHandler := handler.NewAdminHandler(reconciliationUC, ledgerUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Optional JWT auth
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("JWT authentication enabled")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		TableHandler:     tableHandler,
		SessionHandler:   sessionHandler,
		AdminHandler:     adminHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		JWTManager:       jwtManager,
		Metrics:          m,
		Logger:           log.Logger,
	})

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisPublisher(redisClient, "cardroom:events"),
		Logger:     appLogger.Component("outbox"),
		Metrics:    m,
		Interval:   cfg.PublishInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go runSweeper(workerCtx, seatingUC, cfg.SweepInterval)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancelWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// runSweeper periodically closes idle sessions and finishes stranded leaves.
func runSweeper(ctx context.Context, seatingUC *usecase.SeatingUseCase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := seatingUC.SweepIdleSessions(ctx)
			if err != nil {
				log.Error().Err(err).Int("swept", swept).Msg("idle session sweep finished with errors")
				continue
			}
			if swept > 0 {
				log.Info().Int("swept", swept).Msg("idle sessions swept")
			}
		}
	}
}
