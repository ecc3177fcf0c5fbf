package domain

import "errors"

var (
	// Lookup errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Concurrency errors. ErrConflict is retried internally with backoff;
	// ErrContention is surfaced after retry exhaustion.
	ErrConflict   = errors.New("concurrent modification detected")
	ErrContention = errors.New("operation failed after retries due to contention")

	// Business-rule errors, never retried, surfaced verbatim.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount is zero or has the wrong sign for its kind")
	ErrInvalidBuyIn      = errors.New("buy-in outside table stake limits")
	ErrTableFull         = errors.New("table is full")
	ErrTableClosed       = errors.New("table is closed")
	ErrSessionNotActive  = errors.New("session is not active")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrKycRequired       = errors.New("withdrawal requires KYC approval")
	ErrAccountInactive   = errors.New("account is inactive")
)
