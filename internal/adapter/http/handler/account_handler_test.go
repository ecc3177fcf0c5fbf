package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/adapter/http/dto"
	"github.com/iho/cardroom/internal/domain"
)

type accountServiceStub struct {
	createFn   func(ctx context.Context, userID, currency string) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	closeFn    func(ctx context.Context, id string) error
	listFn     func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	getTxnFn   func(ctx context.Context, id string) (*domain.Transaction, error)
	listTxnsFn func(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, string, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, userID, currency string) (*domain.Account, error) {
	return s.createFn(ctx, userID, currency)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) CloseAccount(ctx context.Context, id string) error {
	return s.closeFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *accountServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getTxnFn(ctx, id)
}

func (s *accountServiceStub) ListTransactions(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, string, error) {
	return s.listTxnsFn(ctx, accountID, cursor, limit)
}

type walletServiceStub struct {
	depositFn  func(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error)
	withdrawFn func(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error)
	settleFn   func(ctx context.Context, externalRef string, ok bool) error
}

func (s *walletServiceStub) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
	return s.depositFn(ctx, accountID, amount, method, description)
}

func (s *walletServiceStub) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, accountID, amount, method, description)
}

func (s *walletServiceStub) SettleByExternalRef(ctx context.Context, externalRef string, ok bool) error {
	return s.settleFn(ctx, externalRef, ok)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		UserID:   "user-1",
		Currency: "USD",
		Balance:  decimal.Zero,
		Version:  1,
		Active:   true,
	}

	var capturedUserID, capturedCurrency string
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, userID, currency string) (*domain.Account, error) {
			capturedUserID, capturedCurrency = userID, currency
			return account, nil
		},
	}, &walletServiceStub{})

	body, _ := json.Marshal(dto.CreateAccountRequest{UserID: "user-1", Currency: "USD"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if capturedUserID != "user-1" || capturedCurrency != "USD" {
		t.Fatalf("expected input to match request, got %s %s", capturedUserID, capturedCurrency)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, userID, currency string) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	}, &walletServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_InvalidCurrency(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, userID, currency string) (*domain.Account, error) {
			return nil, domain.ErrInvalidCurrency
		},
	}, &walletServiceStub{})

	body, _ := json.Marshal(dto.CreateAccountRequest{UserID: "user-1", Currency: "XXX"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	}, &walletServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_ExposesAvailable(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		Balance:  decimal.NewFromInt(1000),
		Reserved: decimal.NewFromInt(300),
	}
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) { return account, nil },
	}, &walletServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Available.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected available 700, got %s", resp.Available)
	}
}

func TestAccountHandler_Deposit(t *testing.T) {
	txn := &domain.Transaction{
		ID:        "txn-1",
		AccountID: "acc-1",
		Kind:      domain.KindDeposit,
		Amount:    decimal.NewFromInt(100),
		Status:    domain.StatusPending,
	}

	handler := NewAccountHandler(&accountServiceStub{}, &walletServiceStub{
		depositFn: func(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
			if accountID != "acc-1" {
				t.Fatalf("expected account acc-1, got %s", accountID)
			}
			if !amount.Equal(decimal.NewFromInt(100)) {
				t.Fatalf("expected amount 100, got %s", amount)
			}
			return txn, nil
		},
	})

	body, _ := json.Marshal(dto.DepositRequest{Amount: decimal.NewFromInt(100), Method: "card"})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposit", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deposit(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusPending) {
		t.Fatalf("expected PENDING status, got %s", resp.Status)
	}
}

func TestAccountHandler_Withdraw_InsufficientFunds(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, &walletServiceStub{
		withdrawFn: func(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(1000000)})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdraw", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestAccountHandler_ListTransactions(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listTxnsFn: func(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, string, error) {
			if accountID != "acc-1" || cursor != "txn-5" || limit != 2 {
				t.Fatalf("unexpected listing params: %s %s %d", accountID, cursor, limit)
			}
			return []*domain.Transaction{{ID: "txn-4"}, {ID: "txn-3"}}, "txn-3", nil
		},
	}, &walletServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/transactions?cursor=txn-5&limit=2", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 2 || resp.NextCursor != "txn-3" {
		t.Fatalf("expected 2 transactions and cursor txn-3, got %d %q", len(resp.Transactions), resp.NextCursor)
	}
}

func TestAccountHandler_Settle(t *testing.T) {
	var capturedRef string
	var capturedOk bool
	handler := NewAccountHandler(&accountServiceStub{}, &walletServiceStub{
		settleFn: func(ctx context.Context, externalRef string, ok bool) error {
			capturedRef, capturedOk = externalRef, ok
			return nil
		},
	})

	body, _ := json.Marshal(dto.SettleRequest{ExternalRef: "dep_01ABC", Ok: true})
	req := httptest.NewRequest(http.MethodPost, "/payments/settle", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Settle(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if capturedRef != "dep_01ABC" || !capturedOk {
		t.Fatalf("expected settlement params to propagate, got %s %v", capturedRef, capturedOk)
	}
}

func TestAccountHandler_Settle_MissingRef(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{}, &walletServiceStub{
		settleFn: func(ctx context.Context, externalRef string, ok bool) error {
			t.Fatal("Settle should not be called without external_ref")
			return nil
		},
	})

	body, _ := json.Marshal(dto.SettleRequest{Ok: true})
	req := httptest.NewRequest(http.MethodPost, "/payments/settle", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Settle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
