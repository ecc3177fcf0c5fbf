package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
	"github.com/iho/cardroom/internal/usecase/mocks"
)

func newLedgerUseCase(accountRepo *mocks.MockAccountRepository, txnRepo *mocks.MockTransactionRepository) *usecase.LedgerUseCase {
	return usecase.NewLedgerUseCase(accountRepo, txnRepo, mocks.NewMockAuditRepository(), mocks.NewMockIDGenerator(), nil)
}

func TestLedgerUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name        string
		currency    string
		expectError bool
	}{
		{"valid currency", "USD", false},
		{"lowercase currency normalized", "eur", false},
		{"unknown currency", "XYZ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountRepo := mocks.NewMockAccountRepository()
			uc := newLedgerUseCase(accountRepo, mocks.NewMockTransactionRepository())

			account, err := uc.CreateAccount(context.Background(), "user-1", tt.currency)
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !account.Balance.IsZero() {
				t.Errorf("new account must start at zero, got %s", account.Balance)
			}
			if account.Version != 1 {
				t.Errorf("expected version 1, got %d", account.Version)
			}
			if !account.Active {
				t.Error("new account must be active")
			}
		})
	}
}

func TestLedgerUseCase_CloseAccount(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Version: 1, Active: true})
	uc := newLedgerUseCase(accountRepo, mocks.NewMockTransactionRepository())

	if err := uc.CloseAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acc, _ := accountRepo.GetByID(context.Background(), "acc-1")
	if acc.Active {
		t.Error("account must be inactive after close")
	}

	if err := uc.CloseAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive on double close, got %v", err)
	}
}

func TestLedgerUseCase_ListTransactions(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	accountRepo.Seed(&domain.Account{ID: "acc-1", Version: 1, Active: true})
	txnRepo := mocks.NewMockTransactionRepository()
	uc := newLedgerUseCase(accountRepo, txnRepo)

	for i := 1; i <= 5; i++ {
		txnRepo.Create(context.Background(), nil, &domain.Transaction{
			ID:        fmt.Sprintf("txn-%d", i),
			AccountID: "acc-1",
			Kind:      domain.KindDeposit,
			Amount:    decimal.NewFromInt(int64(i)),
			Status:    domain.StatusCompleted,
		})
	}

	t.Run("newest first with cursor continuation", func(t *testing.T) {
		page, next, err := uc.ListTransactions(context.Background(), "acc-1", "", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page) != 2 || page[0].ID != "txn-5" || page[1].ID != "txn-4" {
			t.Fatalf("unexpected first page: %+v", page)
		}
		if next != "txn-4" {
			t.Fatalf("expected cursor txn-4, got %q", next)
		}

		page, _, err = uc.ListTransactions(context.Background(), "acc-1", next, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page) != 2 || page[0].ID != "txn-3" || page[1].ID != "txn-2" {
			t.Fatalf("unexpected second page: %+v", page)
		}
	})

	t.Run("short final page returns no cursor", func(t *testing.T) {
		page, next, err := uc.ListTransactions(context.Background(), "acc-1", "txn-2", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page) != 1 || page[0].ID != "txn-1" {
			t.Fatalf("unexpected final page: %+v", page)
		}
		if next != "" {
			t.Errorf("expected empty cursor, got %q", next)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, _, err := uc.ListTransactions(context.Background(), "missing", "", 10)
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})
}
