package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a user's wallet. Balance is the sum of all COMPLETED
// transaction amounts; Reserved tracks funds committed to pending
// withdrawals. Available funds are Balance minus Reserved.
type Account struct {
	ID        string
	UserID    string
	Currency  string
	Balance   decimal.Decimal
	Reserved  decimal.Decimal
	Version   int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns the balance not committed to pending withdrawals.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Reserved)
}

// ValidateDebit checks that amount can be taken from the available balance.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}
	if a.Available().Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks that amount can be credited.
func (a *Account) ValidateCredit(amount decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
