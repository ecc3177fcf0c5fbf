package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameKind identifies the game played at a table.
type GameKind string

const (
	GamePoker     GameKind = "POKER"
	GameBlackjack GameKind = "BLACKJACK"
)

// TableStatus is the externally visible state of a table.
type TableStatus string

const (
	TableWaiting TableStatus = "WAITING"
	TableActive  TableStatus = "ACTIVE"
	TableFull    TableStatus = "FULL"
	TableClosed  TableStatus = "CLOSED"
)

// minPlayersToStart is the occupancy at which a table leaves WAITING.
const minPlayersToStart = 2

// Table is a configured game surface. Occupancy is the authoritative seat
// counter and must equal the number of ACTIVE sessions at every instant.
type Table struct {
	ID        string
	Name      string
	Game      GameKind
	Variant   string
	MinBet    decimal.Decimal
	MaxBet    decimal.Decimal
	Capacity  int
	Occupancy int
	Status    TableStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolveStatus derives table status from occupancy and capacity. CLOSED is
// terminal and operator-set; it is never produced here.
func ResolveStatus(occupancy, capacity int) TableStatus {
	switch {
	case occupancy >= capacity:
		return TableFull
	case occupancy >= minPlayersToStart:
		return TableActive
	default:
		return TableWaiting
	}
}

// ValidateSeat checks whether one more player may be seated.
func (t *Table) ValidateSeat() error {
	if t.Status == TableClosed {
		return ErrTableClosed
	}
	if t.Occupancy >= t.Capacity {
		return ErrTableFull
	}
	return nil
}

// ValidateBuyIn checks a buy-in against the table's stake limits.
// The ceiling is maxBet scaled by the configured seat multiplier.
func (t *Table) ValidateBuyIn(buyIn decimal.Decimal, seatMultiplier int64) error {
	if buyIn.LessThan(t.MinBet) {
		return ErrInvalidBuyIn
	}
	if buyIn.GreaterThan(t.MaxBet.Mul(decimal.NewFromInt(seatMultiplier))) {
		return ErrInvalidBuyIn
	}
	return nil
}
