package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// TableRepository implements usecase.TableRepository.
type TableRepository struct {
	pool *pgxpool.Pool
}

// NewTableRepository creates a new TableRepository.
func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

const tableColumns = `id, name, game, variant, min_bet, max_bet, capacity, occupancy, status, created_at, updated_at`

// Create creates a new table.
func (r *TableRepository) Create(ctx context.Context, table *domain.Table) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tables (`+tableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		table.ID,
		table.Name,
		string(table.Game),
		table.Variant,
		decimalToNumeric(table.MinBet),
		decimalToNumeric(table.MaxBet),
		table.Capacity,
		table.Occupancy,
		string(table.Status),
		timeToPgTimestamptz(table.CreatedAt),
		timeToPgTimestamptz(table.UpdatedAt),
	)

	return err
}

// GetByID retrieves a table by ID.
func (r *TableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	return scanTable(r.pool.QueryRow(ctx, `
		SELECT `+tableColumns+` FROM tables WHERE id = $1`, id))
}

// GetByIDForUpdate locks the table row. Occupancy changes for one table are
// serialized through this lock.
func (r *TableRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Table, error) {
	return scanTable(txQuerier(tx).QueryRow(ctx, `
		SELECT `+tableColumns+` FROM tables WHERE id = $1 FOR UPDATE`, id))
}

// UpdateOccupancy writes the occupancy counter and derived status.
func (r *TableRepository) UpdateOccupancy(ctx context.Context, tx usecase.Transaction, id string, occupancy int, status domain.TableStatus, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE tables SET occupancy = $1, status = $2, updated_at = $3 WHERE id = $4`,
		occupancy, string(status), timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTableNotFound
	}

	return nil
}

// UpdateStatus writes the table status.
func (r *TableRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TableStatus, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE tables SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTableNotFound
	}

	return nil
}

// List lists tables matching the filter, oldest first.
func (r *TableRepository) List(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM tables`
	args := []any{}

	var where []string
	if filter.Game != "" {
		args = append(args, string(filter.Game))
		where = append(where, fmt.Sprintf("game = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []*domain.Table
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, rows.Err()
}

func scanTable(row pgx.Row) (*domain.Table, error) {
	var (
		table            domain.Table
		game, status     string
		minBet, maxBet   pgtype.Numeric
		created, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&table.ID,
		&table.Name,
		&game,
		&table.Variant,
		&minBet,
		&maxBet,
		&table.Capacity,
		&table.Occupancy,
		&status,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTableNotFound
		}

		return nil, err
	}

	table.Game = domain.GameKind(game)
	table.Status = domain.TableStatus(status)
	table.MinBet = numericToDecimal(minBet)
	table.MaxBet = numericToDecimal(maxBet)
	table.CreatedAt = created.Time
	table.UpdatedAt = updated.Time

	return &table, nil
}
