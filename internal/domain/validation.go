package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidTableName = errors.New("invalid table name")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidGameKind  = errors.New("invalid game kind")
	ErrInvalidStakes    = errors.New("invalid stake limits")
	ErrInvalidCapacity  = errors.New("invalid seat capacity")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall   = errors.New("amount below minimum allowed")
)

// Validation constants
const (
	MaxTableNameLength = 255
	MinTableNameLength = 1
	MaxSeatCapacity    = 10
	MinSeatCapacity    = 2
	MaxMoveAmount      = "1000000000" // 1 billion
	MinMoveAmount      = "0.01"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
}

// ValidateTableName validates a table display name.
func ValidateTableName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinTableNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidTableName)
	}

	if len(name) > MaxTableNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidTableName, MaxTableNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateGameKind validates the game kind.
func ValidateGameKind(game GameKind) error {
	if game != GamePoker && game != GameBlackjack {
		return fmt.Errorf("%w: %s", ErrInvalidGameKind, game)
	}
	return nil
}

// ValidateStakes validates a table's min/max bet configuration.
func ValidateStakes(minBet, maxBet decimal.Decimal) error {
	if minBet.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: min bet must be positive", ErrInvalidStakes)
	}
	if maxBet.LessThan(minBet) {
		return fmt.Errorf("%w: max bet below min bet", ErrInvalidStakes)
	}
	return nil
}

// ValidateCapacity validates a table's seat capacity.
func ValidateCapacity(capacity int) error {
	if capacity < MinSeatCapacity || capacity > MaxSeatCapacity {
		return fmt.Errorf("%w: capacity must be between %d and %d", ErrInvalidCapacity, MinSeatCapacity, MaxSeatCapacity)
	}
	return nil
}

// ValidateMoveAmount validates the magnitude of a money movement. The sign
// convention per transaction kind is checked separately by ValidateAmount.
func ValidateMoveAmount(amount decimal.Decimal) error {
	abs := amount.Abs()

	minAmount, _ := decimal.NewFromString(MinMoveAmount)
	if abs.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinMoveAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxMoveAmount)
	if abs.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxMoveAmount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
