package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	Version   int64           `json:"version"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Reserved:  a.Reserved,
		Available: a.Available(),
		Version:   a.Version,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Status        string          `json:"status"`
	Description   string          `json:"description,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	ExternalRef   string          `json:"external_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Kind:          string(t.Kind),
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Status:        string(t.Status),
		Description:   t.Description,
		SessionID:     t.SessionID,
		ExternalRef:   t.ExternalRef,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse is a cursor-paginated ledger page.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	NextCursor   string                 `json:"next_cursor,omitempty"`
}

// TableResponse represents a table in API responses.
type TableResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Game      string          `json:"game"`
	Variant   string          `json:"variant,omitempty"`
	MinBet    decimal.Decimal `json:"min_bet"`
	MaxBet    decimal.Decimal `json:"max_bet"`
	Capacity  int             `json:"capacity"`
	Occupancy int             `json:"occupancy"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableFromDomain converts domain table to response.
func TableFromDomain(t *domain.Table) *TableResponse {
	return &TableResponse{
		ID:        t.ID,
		Name:      t.Name,
		Game:      string(t.Game),
		Variant:   t.Variant,
		MinBet:    t.MinBet,
		MaxBet:    t.MaxBet,
		Capacity:  t.Capacity,
		Occupancy: t.Occupancy,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TablesFromDomain converts domain tables to responses.
func TablesFromDomain(tables []*domain.Table) []*TableResponse {
	result := make([]*TableResponse, len(tables))
	for i, t := range tables {
		result[i] = TableFromDomain(t)
	}
	return result
}

// ListTablesResponse is the lobby listing.
type ListTablesResponse struct {
	Tables []*TableResponse `json:"tables"`
	Total  int64            `json:"total"`
}

// SessionResponse represents a seat session in API responses.
type SessionResponse struct {
	ID         string          `json:"id"`
	TableID    string          `json:"table_id"`
	AccountID  string          `json:"account_id"`
	SeatNumber int             `json:"seat_number"`
	BuyIn      decimal.Decimal `json:"buy_in"`
	Stack      decimal.Decimal `json:"stack"`
	Status     string          `json:"status"`
	JoinedAt   time.Time       `json:"joined_at"`
	LastSeenAt time.Time       `json:"last_seen_at"`
	ClosedAt   *time.Time      `json:"closed_at,omitempty"`
}

// SessionFromDomain converts domain session to response.
func SessionFromDomain(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		ID:         s.ID,
		TableID:    s.TableID,
		AccountID:  s.AccountID,
		SeatNumber: s.SeatNumber,
		BuyIn:      s.BuyIn,
		Stack:      s.Stack,
		Status:     string(s.Status),
		JoinedAt:   s.JoinedAt,
		LastSeenAt: s.LastSeenAt,
		ClosedAt:   s.ClosedAt,
	}
}

// ListAccountsResponse is a paginated account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ReconciliationResponse wraps a reconciliation report.
type ReconciliationResponse struct {
	Report *usecase.Report `json:"report"`
	Clean  bool            `json:"clean"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
