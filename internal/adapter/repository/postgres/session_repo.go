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

// SessionRepository implements usecase.SessionRepository.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, table_id, account_id, seat_number, buy_in, stack, status, joined_at, last_seen_at, closed_at`

// Create inserts a session inside the given transaction.
func (r *SessionRepository) Create(ctx context.Context, tx usecase.Transaction, session *domain.Session) error {
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		session.ID,
		session.TableID,
		session.AccountID,
		session.SeatNumber,
		decimalToNumeric(session.BuyIn),
		decimalToNumeric(session.Stack),
		string(session.Status),
		timeToPgTimestamptz(session.JoinedAt),
		timeToPgTimestamptz(session.LastSeenAt),
		timePtrToPgTimestamptz(session.ClosedAt),
	)

	return err
}

// GetByID retrieves a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

// GetByIDForUpdate locks the session row.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Session, error) {
	return scanSession(txQuerier(tx).QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = $1 FOR UPDATE`, id))
}

// ListActiveByTable returns a table's ACTIVE sessions ordered by seat.
func (r *SessionRepository) ListActiveByTable(ctx context.Context, tx usecase.Transaction, tableID string) ([]*domain.Session, error) {
	rows, err := txQuerier(tx).Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE table_id = $1 AND status = $2
		ORDER BY seat_number`, tableID, string(domain.SessionActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSessions(rows)
}

// CountActiveByTable counts a table's ACTIVE sessions.
func (r *SessionRepository) CountActiveByTable(ctx context.Context, tableID string) (int, error) {
	var count int

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sessions WHERE table_id = $1 AND status = $2`,
		tableID, string(domain.SessionActive)).Scan(&count)

	return count, err
}

// UpdateStack writes the session's stack.
func (r *SessionRepository) UpdateStack(ctx context.Context, tx usecase.Transaction, id string, stack decimal.Decimal) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE sessions SET stack = $1 WHERE id = $2`,
		decimalToNumeric(stack), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// UpdateStatus writes the session's status, stack, and close timestamp.
func (r *SessionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, stack decimal.Decimal, closedAt *time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE sessions SET status = $1, stack = $2, closed_at = $3 WHERE id = $4`,
		string(status), decimalToNumeric(stack), timePtrToPgTimestamptz(closedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Touch records a heartbeat.
func (r *SessionRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET last_seen_at = $1 WHERE id = $2`,
		timeToPgTimestamptz(seenAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// ListIdle returns ACTIVE sessions with no heartbeat since the given instant,
// plus every LEAVING session regardless of age so crashed leaves are retried.
func (r *SessionRepository) ListIdle(ctx context.Context, idleSince time.Time, limit int) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE (status = $1 AND last_seen_at < $2) OR status = $3
		ORDER BY last_seen_at
		LIMIT $4`,
		string(domain.SessionActive),
		timeToPgTimestamptz(idleSince),
		string(domain.SessionLeaving),
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		session                  domain.Session
		status                   string
		buyIn, stack             pgtype.Numeric
		joined, lastSeen, closed pgtype.Timestamptz
	)

	err := row.Scan(
		&session.ID,
		&session.TableID,
		&session.AccountID,
		&session.SeatNumber,
		&buyIn,
		&stack,
		&status,
		&joined,
		&lastSeen,
		&closed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, err
	}

	session.Status = domain.SessionStatus(status)
	session.BuyIn = numericToDecimal(buyIn)
	session.Stack = numericToDecimal(stack)
	session.JoinedAt = joined.Time
	session.LastSeenAt = lastSeen.Time
	session.ClosedAt = pgTimestamptzToTimePtr(closed)

	return &session, nil
}
