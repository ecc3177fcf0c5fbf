package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/tests/testutil"
)

func TestSeating(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	s := newStack(testDB.Pool)

	t.Run("join and leave conserve money", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, "player", decimal.NewFromInt(1000))
		table := testDB.CreateTestTable(ctx, "Mid Stakes", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		session, err := s.seatingUC.JoinTable(ctx, table.ID, account.ID, decimal.NewFromInt(200))
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}

		acc, _ := s.accountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(800)) {
			t.Fatalf("expected balance 800 after buy-in, got %s", acc.Balance)
		}

		tbl, _ := s.tableRepo.GetByID(ctx, table.ID)
		if tbl.Occupancy != 1 {
			t.Fatalf("expected occupancy 1, got %d", tbl.Occupancy)
		}

		closed, err := s.seatingUC.LeaveTable(ctx, session.ID)
		if err != nil {
			t.Fatalf("leave failed: %v", err)
		}
		if closed.Status != domain.SessionClosed {
			t.Fatalf("expected CLOSED session, got %s", closed.Status)
		}

		acc, _ = s.accountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(1000)) {
			t.Fatalf("expected full round trip back to 1000, got %s", acc.Balance)
		}

		tbl, _ = s.tableRepo.GetByID(ctx, table.ID)
		if tbl.Occupancy != 0 {
			t.Fatalf("expected occupancy 0 after leave, got %d", tbl.Occupancy)
		}
	})

	t.Run("concurrent joins never exceed capacity", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		capacity := 4
		players := 10
		table := testDB.CreateTestTable(ctx, "Contested", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), capacity)

		accountIDs := make([]string, players)
		for i := range accountIDs {
			accountIDs[i] = testDB.CreateTestAccount(ctx, fmt.Sprintf("player-%d", i), decimal.NewFromInt(1000)).ID
		}

		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			fullCount    atomic.Int32
		)

		wg.Add(players)
		for i := range players {
			go func(accountID string) {
				defer wg.Done()

				_, err := s.seatingUC.JoinTable(ctx, table.ID, accountID, decimal.NewFromInt(200))
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrTableFull):
					fullCount.Add(1)
				default:
					t.Errorf("unexpected join error: %v", err)
				}
			}(accountIDs[i])
		}
		wg.Wait()

		if successCount.Load() != int32(capacity) {
			t.Fatalf("expected exactly %d seats taken, got %d", capacity, successCount.Load())
		}
		if fullCount.Load() != int32(players-capacity) {
			t.Fatalf("expected %d rejections, got %d", players-capacity, fullCount.Load())
		}

		tbl, _ := s.tableRepo.GetByID(ctx, table.ID)
		if tbl.Occupancy != capacity {
			t.Fatalf("expected occupancy %d, got %d", capacity, tbl.Occupancy)
		}
		if tbl.Status != domain.TableFull {
			t.Fatalf("expected FULL status, got %s", tbl.Status)
		}

		// Rejected players keep their full balance.
		for _, id := range accountIDs {
			acc, _ := s.accountRepo.GetByID(ctx, id)
			if acc.Balance.Equal(decimal.NewFromInt(1000)) {
				continue
			}
			if !acc.Balance.Equal(decimal.NewFromInt(800)) {
				t.Fatalf("account %s has unexpected balance %s", id, acc.Balance)
			}
		}
	})

	t.Run("leave is exactly once under repeats", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, "player", decimal.NewFromInt(1000))
		table := testDB.CreateTestTable(ctx, "Mid Stakes", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		session, err := s.seatingUC.JoinTable(ctx, table.ID, account.ID, decimal.NewFromInt(200))
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}

		if _, err := s.seatingUC.LeaveTable(ctx, session.ID); err != nil {
			t.Fatalf("leave failed: %v", err)
		}
		if _, err := s.seatingUC.LeaveTable(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotActive) {
			t.Fatalf("expected ErrSessionNotActive on second leave, got %v", err)
		}

		acc, _ := s.accountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(1000)) {
			t.Fatalf("expected single credit, balance %s", acc.Balance)
		}
	})

	t.Run("stack deltas during play and cash out the result", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, "player", decimal.NewFromInt(1000))
		table := testDB.CreateTestTable(ctx, "Mid Stakes", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		session, err := s.seatingUC.JoinTable(ctx, table.ID, account.ID, decimal.NewFromInt(200))
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}

		// Hand results move only the stack.
		if _, err := s.seatingUC.ApplyStackDelta(ctx, session.ID, decimal.NewFromInt(150), false); err != nil {
			t.Fatalf("stack delta failed: %v", err)
		}

		acc, _ := s.accountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(800)) {
			t.Fatalf("expected wallet untouched by hand result, got %s", acc.Balance)
		}

		if _, err := s.seatingUC.LeaveTable(ctx, session.ID); err != nil {
			t.Fatalf("leave failed: %v", err)
		}

		acc, _ = s.accountRepo.GetByID(ctx, account.ID)
		if !acc.Balance.Equal(decimal.NewFromInt(1150)) {
			t.Fatalf("expected 1150 after cashing out winnings, got %s", acc.Balance)
		}
	})

	t.Run("closing a table force-leaves everyone", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		a1 := testDB.CreateTestAccount(ctx, "p1", decimal.NewFromInt(1000))
		a2 := testDB.CreateTestAccount(ctx, "p2", decimal.NewFromInt(1000))
		table := testDB.CreateTestTable(ctx, "Closing", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		if _, err := s.seatingUC.JoinTable(ctx, table.ID, a1.ID, decimal.NewFromInt(200)); err != nil {
			t.Fatalf("join failed: %v", err)
		}
		if _, err := s.seatingUC.JoinTable(ctx, table.ID, a2.ID, decimal.NewFromInt(300)); err != nil {
			t.Fatalf("join failed: %v", err)
		}

		closed, err := s.tableUC.CloseTable(ctx, table.ID)
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if closed.Status != domain.TableClosed || closed.Occupancy != 0 {
			t.Fatalf("expected empty CLOSED table, got %s occupancy %d", closed.Status, closed.Occupancy)
		}

		for _, id := range []string{a1.ID, a2.ID} {
			acc, _ := s.accountRepo.GetByID(ctx, id)
			if !acc.Balance.Equal(decimal.NewFromInt(1000)) {
				t.Fatalf("expected stacks returned, account %s has %s", id, acc.Balance)
			}
		}

		// Joining a closed table is rejected.
		if _, err := s.seatingUC.JoinTable(ctx, table.ID, a1.ID, decimal.NewFromInt(200)); !errors.Is(err, domain.ErrTableClosed) {
			t.Fatalf("expected ErrTableClosed, got %v", err)
		}
	})
}
