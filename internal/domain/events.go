package domain

import "time"

// Event types
const (
	EventTypeAccountCreated       = "account.created"
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
	EventTypeSessionJoined        = "session.joined"
	EventTypeSessionClosed        = "session.closed"
	EventTypeTableStatusChanged   = "table.status_changed"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
	AggregateTypeSession     = "session"
	AggregateTypeTable       = "table"
)

// OutboxEvent represents an event to be published.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionCompletedEvent payload
type TransactionCompletedEvent struct {
	TransactionID string `json:"transaction_id"`
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
}

// SessionJoinedEvent payload
type SessionJoinedEvent struct {
	SessionID  string `json:"session_id"`
	TableID    string `json:"table_id"`
	AccountID  string `json:"account_id"`
	SeatNumber int    `json:"seat_number"`
	BuyIn      string `json:"buy_in"`
}

// SessionClosedEvent payload
type SessionClosedEvent struct {
	SessionID string `json:"session_id"`
	TableID   string `json:"table_id"`
	AccountID string `json:"account_id"`
	Stack     string `json:"stack"`
	Reason    string `json:"reason"`
}

// TableStatusChangedEvent payload
type TableStatusChangedEvent struct {
	TableID   string `json:"table_id"`
	Status    string `json:"status"`
	Occupancy int    `json:"occupancy"`
}
