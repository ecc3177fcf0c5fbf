package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name      string
		occupancy int
		capacity  int
		want      TableStatus
	}{
		{"empty table", 0, 6, TableWaiting},
		{"single player", 1, 6, TableWaiting},
		{"two players start the game", 2, 6, TableActive},
		{"almost full", 5, 6, TableActive},
		{"full", 6, 6, TableFull},
		{"heads-up table fills at two", 2, 2, TableFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.occupancy, tt.capacity))
		})
	}
}

func TestTable_ValidateSeat(t *testing.T) {
	table := &Table{Capacity: 6, Occupancy: 5, Status: TableActive}
	require.NoError(t, table.ValidateSeat())

	table.Occupancy = 6
	assert.ErrorIs(t, table.ValidateSeat(), ErrTableFull)

	table.Occupancy = 0
	table.Status = TableClosed
	assert.ErrorIs(t, table.ValidateSeat(), ErrTableClosed)
}

func TestTable_ValidateBuyIn(t *testing.T) {
	table := &Table{
		MinBet: decimal.NewFromInt(10),
		MaxBet: decimal.NewFromInt(500),
	}

	tests := []struct {
		name           string
		buyIn          decimal.Decimal
		seatMultiplier int64
		wantErr        error
	}{
		{"at min bet", decimal.NewFromInt(10), 20, nil},
		{"below min bet", decimal.NewFromInt(5), 20, ErrInvalidBuyIn},
		{"at ceiling", decimal.NewFromInt(10000), 20, nil},
		{"above ceiling", decimal.NewFromFloat(10000.01), 20, ErrInvalidBuyIn},
		{"tighter multiplier lowers ceiling", decimal.NewFromInt(1000), 1, ErrInvalidBuyIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := table.ValidateBuyIn(tt.buyIn, tt.seatMultiplier)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
