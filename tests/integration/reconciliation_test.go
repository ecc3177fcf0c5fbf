package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/tests/testutil"
)

func TestReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	s := newStack(testDB.Pool)

	t.Run("clean after real activity", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "player", decimal.Zero)
		table := testDB.CreateTestTable(ctx, "Mid Stakes", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		if _, err := s.balanceUC.Deposit(ctx, account.ID, decimal.NewFromInt(1000), "card", ""); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if err := s.balanceUC.SettleByExternalRef(ctx, s.gateway.lastRef(), true); err != nil {
			t.Fatalf("settlement failed: %v", err)
		}

		session, err := s.seatingUC.JoinTable(ctx, table.ID, account.ID, decimal.NewFromInt(200))
		if err != nil {
			t.Fatalf("join failed: %v", err)
		}
		if _, err := s.seatingUC.ApplyStackDelta(ctx, session.ID, decimal.NewFromInt(50), false); err != nil {
			t.Fatalf("stack delta failed: %v", err)
		}
		if _, err := s.seatingUC.LeaveTable(ctx, session.ID); err != nil {
			t.Fatalf("leave failed: %v", err)
		}

		report, err := s.reconUC.Run(ctx)
		if err != nil {
			t.Fatalf("reconciliation failed: %v", err)
		}
		if !report.Clean() {
			t.Fatalf("expected a clean report, got %+v", report)
		}
	})

	t.Run("seated players do not trip the balance check", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "player", decimal.Zero)
		table := testDB.CreateTestTable(ctx, "Mid Stakes", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		if _, err := s.balanceUC.Deposit(ctx, account.ID, decimal.NewFromInt(1000), "card", ""); err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if err := s.balanceUC.SettleByExternalRef(ctx, s.gateway.lastRef(), true); err != nil {
			t.Fatalf("settlement failed: %v", err)
		}

		if _, err := s.seatingUC.JoinTable(ctx, table.ID, account.ID, decimal.NewFromInt(200)); err != nil {
			t.Fatalf("join failed: %v", err)
		}

		report, err := s.reconUC.Run(ctx)
		if err != nil {
			t.Fatalf("reconciliation failed: %v", err)
		}
		if !report.Clean() {
			t.Fatalf("expected a clean report mid-session, got %+v", report)
		}
	})

	t.Run("reports tampered occupancy without repairing", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		table := testDB.CreateTestTable(ctx, "Drifted", domain.GamePoker, decimal.NewFromInt(5), decimal.NewFromInt(100), 6)

		if _, err := testDB.Pool.Exec(ctx, `UPDATE tables SET occupancy = 3, status = 'ACTIVE' WHERE id = $1`, table.ID); err != nil {
			t.Fatalf("failed to drift occupancy: %v", err)
		}

		report, err := s.reconUC.Run(ctx)
		if err != nil {
			t.Fatalf("reconciliation failed: %v", err)
		}
		if len(report.OccupancyDiscrepancies) != 1 {
			t.Fatalf("expected 1 occupancy discrepancy, got %d", len(report.OccupancyDiscrepancies))
		}

		// The drifted row is reported, never repaired.
		tbl, _ := s.tableRepo.GetByID(ctx, table.ID)
		if tbl.Occupancy != 3 {
			t.Fatalf("expected reconciliation to leave the row alone, occupancy %d", tbl.Occupancy)
		}
	})
}
