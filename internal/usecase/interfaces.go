package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// UpdateBalance applies the new balance, reservation, and version only if
	// the stored version still equals expectedVersion. Returns
	// domain.ErrConflict when another writer got there first.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance, reserved decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error)
	SetExternalRef(ctx context.Context, id, externalRef string) error
	// Complete fills the balance fields and flips PENDING to the final status.
	Complete(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, balanceBefore, balanceAfter decimal.Decimal, completedAt time.Time) error
	// ExistsBySession reports whether a transaction of the given kind already
	// references the session. Used to keep compensation credits idempotent.
	ExistsBySession(ctx context.Context, sessionID string, kind domain.TransactionKind) (bool, error)
	// ListByAccount returns transactions newest first. A non-empty cursor
	// restarts the listing strictly after the given transaction id.
	ListByAccount(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, error)
}

// TableRepository defines data access for tables.
type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	// GetByIDForUpdate locks the table row; occupancy changes for one table
	// are serialized through this lock.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Table, error)
	UpdateOccupancy(ctx context.Context, tx Transaction, id string, occupancy int, status domain.TableStatus, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TableStatus, updatedAt time.Time) error
	List(ctx context.Context, filter TableFilter) ([]*domain.Table, error)
}

// TableFilter narrows ListTables results.
type TableFilter struct {
	Game   domain.GameKind
	Status domain.TableStatus
	Limit  int
	Offset int
}

// SessionRepository defines data access for seat sessions.
type SessionRepository interface {
	Create(ctx context.Context, tx Transaction, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Session, error)
	ListActiveByTable(ctx context.Context, tx Transaction, tableID string) ([]*domain.Session, error)
	CountActiveByTable(ctx context.Context, tableID string) (int, error)
	UpdateStack(ctx context.Context, tx Transaction, id string, stack decimal.Decimal) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.SessionStatus, stack decimal.Decimal, closedAt *time.Time) error
	Touch(ctx context.Context, id string, seenAt time.Time) error
	// ListIdle returns ACTIVE or LEAVING sessions with no heartbeat since
	// the given instant.
	ListIdle(ctx context.Context, idleSince time.Time, limit int) ([]*domain.Session, error)
}

// LedgerRepository defines ledger-wide consistency queries.
type LedgerRepository interface {
	// CompletedSum returns the sum of COMPLETED transaction amounts for an account.
	CompletedSum(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
