package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
	"github.com/iho/cardroom/internal/usecase/mocks"
)

type tableFixture struct {
	seating *seatingFixture
	uc      *usecase.TableUseCase
}

func newTableFixture(t *testing.T) *tableFixture {
	f := newSeatingFixture(t)
	return &tableFixture{
		seating: f,
		uc: usecase.NewTableUseCase(usecase.TableConfig{
			TxManager:   mocks.NewMockTransactionManager(),
			TableRepo:   f.tableRepo,
			SessionRepo: f.sessionRepo,
			Seating:     f.uc,
			AuditRepo:   mocks.NewMockAuditRepository(),
			IDGen:       mocks.NewMockIDGenerator(),
			Cache:       f.cache,
		}),
	}
}

func TestTableUseCase_CreateTable(t *testing.T) {
	f := newTableFixture(t)

	table, err := f.uc.CreateTable(context.Background(), usecase.CreateTableInput{
		Name:     "Royal High Stakes",
		Game:     domain.GamePoker,
		Variant:  "texas-holdem",
		MinBet:   decimal.NewFromInt(10),
		MaxBet:   decimal.NewFromInt(500),
		Capacity: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TableWaiting, table.Status)
	assert.Equal(t, 0, table.Occupancy)

	t.Run("rejects bad configuration", func(t *testing.T) {
		cases := []struct {
			name  string
			input usecase.CreateTableInput
		}{
			{"empty name", usecase.CreateTableInput{
				Game: domain.GamePoker, MinBet: decimal.NewFromInt(10), MaxBet: decimal.NewFromInt(500), Capacity: 6,
			}},
			{"unknown game", usecase.CreateTableInput{
				Name: "x", Game: "ROULETTE", MinBet: decimal.NewFromInt(10), MaxBet: decimal.NewFromInt(500), Capacity: 6,
			}},
			{"max below min", usecase.CreateTableInput{
				Name: "x", Game: domain.GamePoker, MinBet: decimal.NewFromInt(100), MaxBet: decimal.NewFromInt(50), Capacity: 6,
			}},
			{"capacity too small", usecase.CreateTableInput{
				Name: "x", Game: domain.GamePoker, MinBet: decimal.NewFromInt(10), MaxBet: decimal.NewFromInt(500), Capacity: 1,
			}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.uc.CreateTable(context.Background(), tc.input)
				assert.Error(t, err)
			})
		}
	})
}

func TestTableUseCase_ListTables(t *testing.T) {
	f := newTableFixture(t)
	f.seating.seedTable("tbl-1", 0, 6, domain.TableWaiting)

	t.Run("caches the unfiltered listing", func(t *testing.T) {
		tables, err := f.uc.ListTables(context.Background(), usecase.TableFilter{})
		require.NoError(t, err)
		require.Len(t, tables, 1)

		if _, err := f.seating.cache.Get(context.Background(), "tables:lobby"); err != nil {
			t.Fatal("expected lobby listing in cache")
		}

		// Served from cache even after the store changes underneath.
		f.seating.seedTable("tbl-2", 0, 6, domain.TableWaiting)
		tables, err = f.uc.ListTables(context.Background(), usecase.TableFilter{})
		require.NoError(t, err)
		assert.Len(t, tables, 1)
	})

	t.Run("filtered listing bypasses the cache", func(t *testing.T) {
		tables, err := f.uc.ListTables(context.Background(), usecase.TableFilter{Game: domain.GamePoker})
		require.NoError(t, err)
		assert.Len(t, tables, 2)
	})
}

func TestTableUseCase_CloseTable(t *testing.T) {
	t.Run("force-leaves seated players", func(t *testing.T) {
		f := newTableFixture(t)
		f.seating.seedTable("tbl-1", 0, 6, domain.TableWaiting)
		f.seating.seedAccount("acc-1", 1000)
		f.seating.seedAccount("acc-2", 1000)

		s1, err := f.seating.uc.JoinTable(context.Background(), "tbl-1", "acc-1", decimal.NewFromInt(200))
		require.NoError(t, err)
		_, err = f.seating.uc.JoinTable(context.Background(), "tbl-1", "acc-2", decimal.NewFromInt(300))
		require.NoError(t, err)

		closed, err := f.uc.CloseTable(context.Background(), "tbl-1")
		require.NoError(t, err)
		assert.Equal(t, domain.TableClosed, closed.Status)
		assert.Equal(t, 0, closed.Occupancy)

		// Each stack is credited back in full.
		acc1, _ := f.seating.accountRepo.GetByID(context.Background(), "acc-1")
		assert.True(t, acc1.Balance.Equal(decimal.NewFromInt(1000)), "got %s", acc1.Balance)
		acc2, _ := f.seating.accountRepo.GetByID(context.Background(), "acc-2")
		assert.True(t, acc2.Balance.Equal(decimal.NewFromInt(1000)), "got %s", acc2.Balance)

		session, _ := f.seating.sessionRepo.GetByID(context.Background(), s1.ID)
		assert.Equal(t, domain.SessionClosed, session.Status)

		// CLOSED is terminal.
		_, err = f.uc.CloseTable(context.Background(), "tbl-1")
		assert.ErrorIs(t, err, domain.ErrTableClosed)
	})

	t.Run("no joins land on a closed table", func(t *testing.T) {
		f := newTableFixture(t)
		f.seating.seedTable("tbl-1", 0, 6, domain.TableWaiting)
		f.seating.seedAccount("acc-1", 1000)

		_, err := f.uc.CloseTable(context.Background(), "tbl-1")
		require.NoError(t, err)

		_, err = f.seating.uc.JoinTable(context.Background(), "tbl-1", "acc-1", decimal.NewFromInt(200))
		assert.ErrorIs(t, err, domain.ErrTableClosed)
	})
}

func TestTableUseCase_GetTable(t *testing.T) {
	f := newTableFixture(t)
	f.seating.tableRepo.Seed(&domain.Table{ID: "tbl-1", Name: "x", CreatedAt: time.Now()})

	table, err := f.uc.GetTable(context.Background(), "tbl-1")
	require.NoError(t, err)
	assert.Equal(t, "tbl-1", table.ID)

	_, err = f.uc.GetTable(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTableNotFound)
}
