package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single database transaction.
	DefaultTransactionTimeout = 30 * time.Second

	// DefaultSeatMultiplier caps buy-ins at maxBet times this factor when no
	// policy is configured.
	DefaultSeatMultiplier int64 = 20

	// DefaultSessionIdleTimeout force-closes sessions with no heartbeat.
	DefaultSessionIdleTimeout = 10 * time.Minute

	// sweepBatchSize bounds how many idle sessions one sweep pass closes.
	sweepBatchSize = 100
)
