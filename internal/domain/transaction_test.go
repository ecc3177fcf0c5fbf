package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		kind    TransactionKind
		amount  decimal.Decimal
		wantErr bool
	}{
		{"deposit positive", KindDeposit, decimal.NewFromInt(100), false},
		{"deposit negative", KindDeposit, decimal.NewFromInt(-100), true},
		{"withdraw negative", KindWithdraw, decimal.NewFromInt(-100), false},
		{"withdraw positive", KindWithdraw, decimal.NewFromInt(100), true},
		{"bet negative", KindBet, decimal.NewFromInt(-5), false},
		{"win positive", KindWin, decimal.NewFromInt(5), false},
		{"buy-in negative", KindBuyIn, decimal.NewFromInt(-200), false},
		{"cash-out positive", KindCashOut, decimal.NewFromInt(200), false},
		{"zero amount", KindDeposit, decimal.Zero, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.kind, tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusFailed))
	assert.False(t, StatusFailed.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
}

func TestSession_ValidateStackDelta(t *testing.T) {
	s := &Session{Status: SessionActive, Stack: decimal.NewFromInt(50)}

	assert.NoError(t, s.ValidateStackDelta(decimal.NewFromInt(-50)))
	assert.ErrorIs(t, s.ValidateStackDelta(decimal.NewFromInt(-51)), ErrInsufficientFunds)
	assert.ErrorIs(t, s.ValidateStackDelta(decimal.Zero), ErrInvalidAmount)

	s.Status = SessionLeaving
	assert.ErrorIs(t, s.ValidateStackDelta(decimal.NewFromInt(10)), ErrSessionNotActive)
}
