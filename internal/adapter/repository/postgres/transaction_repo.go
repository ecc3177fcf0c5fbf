package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, account_id, kind, amount, balance_before, balance_after,
	status, description, session_id, external_ref, created_at, completed_at`

// Create inserts a ledger entry inside the given transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		txn.ID,
		txn.AccountID,
		string(txn.Kind),
		decimalToNumeric(txn.Amount),
		decimalToNumeric(txn.BalanceBefore),
		decimalToNumeric(txn.BalanceAfter),
		string(txn.Status),
		txn.Description,
		stringToText(txn.SessionID),
		stringToText(txn.ExternalRef),
		timeToPgTimestamptz(txn.CreatedAt),
		timePtrToPgTimestamptz(txn.CompletedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

// GetByIDTx retrieves a transaction inside a database transaction with a row lock.
func (r *TransactionRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return scanTransaction(txQuerier(tx).QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
}

// GetByExternalRef resolves a payment gateway reference.
func (r *TransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE external_ref = $1`, externalRef))
}

// SetExternalRef attaches the gateway reference to a transaction.
func (r *TransactionRepository) SetExternalRef(ctx context.Context, id, externalRef string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions SET external_ref = $1 WHERE id = $2`, externalRef, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Complete fills the balance snapshot and flips PENDING to the final status.
// The WHERE clause enforces the transition; a non-PENDING row is untouched.
func (r *TransactionRepository) Complete(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceBefore, balanceAfter decimal.Decimal, completedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE transactions
		SET status = $1, balance_before = $2, balance_after = $3, completed_at = $4
		WHERE id = $5 AND status = $6`,
		string(status),
		decimalToNumeric(balanceBefore),
		decimalToNumeric(balanceAfter),
		timeToPgTimestamptz(completedAt),
		id,
		string(domain.StatusPending),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

// ExistsBySession reports whether a transaction of the given kind already
// references the session.
func (r *TransactionRepository) ExistsBySession(ctx context.Context, sessionID string, kind domain.TransactionKind) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE session_id = $1 AND kind = $2
		)`, sessionID, string(kind)).Scan(&exists)

	return exists, err
}

// ListByAccount returns transactions newest first. IDs are ULIDs, so ordering
// by ID is ordering by creation time and the cursor is a plain ID comparison.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if cursor == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT `+transactionColumns+` FROM transactions
			WHERE account_id = $1
			ORDER BY id DESC
			LIMIT $2`, accountID, limit)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+transactionColumns+` FROM transactions
			WHERE account_id = $1 AND id < $2
			ORDER BY id DESC
			LIMIT $3`, accountID, cursor, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

// CompletedSum returns the sum of COMPLETED transaction amounts for an
// account. The repository doubles as usecase.LedgerRepository.
func (r *TransactionRepository) CompletedSum(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE account_id = $1 AND status = $2`,
		accountID, string(domain.StatusCompleted)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn                    domain.Transaction
		kind, status           string
		amount, before, after  pgtype.Numeric
		sessionID, externalRef pgtype.Text
		created, completed     pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&kind,
		&amount,
		&before,
		&after,
		&status,
		&txn.Description,
		&sessionID,
		&externalRef,
		&created,
		&completed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	txn.Kind = domain.TransactionKind(kind)
	txn.Status = domain.TransactionStatus(status)
	txn.Amount = numericToDecimal(amount)
	txn.BalanceBefore = numericToDecimal(before)
	txn.BalanceAfter = numericToDecimal(after)
	txn.SessionID = textToString(sessionID)
	txn.ExternalRef = textToString(externalRef)
	txn.CreatedAt = created.Time
	txn.CompletedAt = pgTimestamptzToTimePtr(completed)

	return &txn, nil
}
