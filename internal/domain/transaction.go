package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "DEPOSIT"
	KindWithdraw TransactionKind = "WITHDRAW"
	KindBet      TransactionKind = "BET"
	KindWin      TransactionKind = "WIN"
	KindBuyIn    TransactionKind = "BUY_IN"
	KindCashOut  TransactionKind = "CASH_OUT"
)

// IsDebit reports whether the kind removes funds from the account.
func (k TransactionKind) IsDebit() bool {
	switch k {
	case KindWithdraw, KindBet, KindBuyIn:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger entry. Amount is signed: negative for
// debits, positive for credits. BalanceBefore/BalanceAfter are filled at the
// instant the balance change is applied and never change afterwards; the only
// permitted mutation is the status transition PENDING -> COMPLETED/FAILED.
type Transaction struct {
	ID            string
	AccountID     string
	Kind          TransactionKind
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Status        TransactionStatus
	Description   string
	SessionID     string
	ExternalRef   string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// ValidateAmount checks the signed amount against the kind. Debits carry
// negative amounts, credits positive; zero is never valid.
func ValidateAmount(kind TransactionKind, amount decimal.Decimal) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	if kind.IsDebit() && amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !kind.IsDebit() && amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// CanTransitionTo reports whether the status change is permitted.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusFailed)
}
