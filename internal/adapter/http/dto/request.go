package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

// DepositRequest represents a wallet deposit.
type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Description string          `json:"description,omitempty"`
}

// WithdrawRequest represents a wallet withdrawal.
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Description string          `json:"description,omitempty"`
}

// SettleRequest is the payment gateway's settlement callback body.
type SettleRequest struct {
	ExternalRef string `json:"external_ref"`
	Ok          bool   `json:"ok"`
}

// CreateTableRequest represents a request to create a table.
type CreateTableRequest struct {
	Name     string          `json:"name"`
	Game     string          `json:"game"`
	Variant  string          `json:"variant,omitempty"`
	MinBet   decimal.Decimal `json:"min_bet"`
	MaxBet   decimal.Decimal `json:"max_bet"`
	Capacity int             `json:"capacity"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTableRequest) ToUseCaseInput() usecase.CreateTableInput {
	return usecase.CreateTableInput{
		Name:     r.Name,
		Game:     domain.GameKind(r.Game),
		Variant:  r.Variant,
		MinBet:   r.MinBet,
		MaxBet:   r.MaxBet,
		Capacity: r.Capacity,
	}
}

// JoinTableRequest represents a request to take a seat.
type JoinTableRequest struct {
	AccountID string          `json:"account_id"`
	BuyIn     decimal.Decimal `json:"buy_in"`
}

// StackDeltaRequest adjusts a session's stack. MoneyMovement distinguishes a
// wallet top-up / partial cash-out from a pure hand result.
type StackDeltaRequest struct {
	Delta         decimal.Decimal `json:"delta"`
	MoneyMovement bool            `json:"money_movement"`
}
