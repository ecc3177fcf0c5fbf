package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a seat occupancy.
type SessionStatus string

const (
	SessionActive  SessionStatus = "ACTIVE"
	SessionLeaving SessionStatus = "LEAVING"
	SessionClosed  SessionStatus = "CLOSED"
)

// Session is one account's occupancy of one seat at one table. The buy-in is
// debited from the account before the session becomes ACTIVE; on close the
// remaining stack is credited back.
type Session struct {
	ID         string
	TableID    string
	AccountID  string
	SeatNumber int
	BuyIn      decimal.Decimal
	Stack      decimal.Decimal
	Status     SessionStatus
	JoinedAt   time.Time
	LastSeenAt time.Time
	ClosedAt   *time.Time
}

// ValidateStackDelta checks that applying delta keeps the stack non-negative.
func (s *Session) ValidateStackDelta(delta decimal.Decimal) error {
	if s.Status != SessionActive {
		return ErrSessionNotActive
	}
	if delta.IsZero() {
		return ErrInvalidAmount
	}
	if s.Stack.Add(delta).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}
