package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
)

// lobbyCacheTTL bounds staleness of the cached unfiltered table listing.
const lobbyCacheTTL = 5 * time.Second

// TableUseCase manages table configuration and lifecycle. Occupancy and
// derived status changes happen in SeatingUseCase; here tables are created,
// listed, and closed.
type TableUseCase struct {
	txManager   TransactionManager
	tableRepo   TableRepository
	sessionRepo SessionRepository
	seating     *SeatingUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	cache       Cache
	metrics     *metrics.Metrics
}

// TableConfig holds dependencies for TableUseCase.
type TableConfig struct {
	TxManager   TransactionManager
	TableRepo   TableRepository
	SessionRepo SessionRepository
	Seating     *SeatingUseCase
	AuditRepo   AuditRepository
	IDGen       IDGenerator
	Cache       Cache
	Metrics     *metrics.Metrics
}

// NewTableUseCase creates a new TableUseCase.
func NewTableUseCase(cfg TableConfig) *TableUseCase {
	return &TableUseCase{
		txManager:   cfg.TxManager,
		tableRepo:   cfg.TableRepo,
		sessionRepo: cfg.SessionRepo,
		seating:     cfg.Seating,
		auditRepo:   cfg.AuditRepo,
		idGen:       cfg.IDGen,
		cache:       cfg.Cache,
		metrics:     cfg.Metrics,
	}
}

// CreateTableInput carries the operator-supplied table configuration.
type CreateTableInput struct {
	Name     string
	Game     domain.GameKind
	Variant  string
	MinBet   decimal.Decimal
	MaxBet   decimal.Decimal
	Capacity int
}

// CreateTable registers a new table in WAITING status.
func (uc *TableUseCase) CreateTable(ctx context.Context, in CreateTableInput) (*domain.Table, error) {
	if err := domain.ValidateTableName(in.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateGameKind(in.Game); err != nil {
		return nil, err
	}
	if err := domain.ValidateStakes(in.MinBet, in.MaxBet); err != nil {
		return nil, err
	}
	if err := domain.ValidateCapacity(in.Capacity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	table := &domain.Table{
		ID:        uc.idGen.Generate(),
		Name:      in.Name,
		Game:      in.Game,
		Variant:   in.Variant,
		MinBet:    in.MinBet,
		MaxBet:    in.MaxBet,
		Capacity:  in.Capacity,
		Occupancy: 0,
		Status:    domain.TableWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.tableRepo.Create(ctx, table); err != nil {
		return nil, err
	}

	uc.invalidateLobby(ctx)
	uc.audit(ctx, domain.AuditActionTableCreate, table)

	if uc.metrics != nil {
		uc.metrics.TablesCreated.Inc()
	}

	return table, nil
}

// GetTable returns a table by ID.
func (uc *TableUseCase) GetTable(ctx context.Context, id string) (*domain.Table, error) {
	return uc.tableRepo.GetByID(ctx, id)
}

// ListTables returns tables matching the filter. The unfiltered first page is
// served from cache; occupancy mutations invalidate it.
func (uc *TableUseCase) ListTables(ctx context.Context, filter TableFilter) ([]*domain.Table, error) {
	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	filter.Offset = offset

	cacheable := uc.cache != nil && filter.Game == "" && filter.Status == "" && filter.Offset == 0

	if cacheable {
		if cached, err := uc.cache.Get(ctx, lobbyCacheKey); err == nil && cached != "" {
			var tables []*domain.Table
			if err := json.Unmarshal([]byte(cached), &tables); err == nil {
				if uc.metrics != nil {
					uc.metrics.CacheHits.WithLabelValues("lobby").Inc()
				}
				return tables, nil
			}
		}
		if uc.metrics != nil {
			uc.metrics.CacheMisses.WithLabelValues("lobby").Inc()
		}
	}

	tables, err := uc.tableRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if data, err := json.Marshal(tables); err == nil {
			_ = uc.cache.Set(ctx, lobbyCacheKey, string(data), lobbyCacheTTL)
		}
	}

	return tables, nil
}

// CloseTable sets a table CLOSED and force-leaves every active session,
// crediting each remaining stack back to its account. Sessions that fail to
// close keep the close from reporting success; the table is CLOSED regardless
// so no new joins land while retries proceed.
func (uc *TableUseCase) CloseTable(ctx context.Context, id string) (*domain.Table, error) {
	table, err := uc.markClosed(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := uc.listActive(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, session := range active {
		if _, err := uc.seating.LeaveTable(ctx, session.ID); err != nil &&
			!errors.Is(err, domain.ErrSessionNotActive) {
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	uc.invalidateLobby(ctx)
	uc.audit(ctx, domain.AuditActionTableClose, table)

	if uc.metrics != nil {
		uc.metrics.TablesClosed.Inc()
	}

	table.Occupancy = 0
	return table, nil
}

func (uc *TableUseCase) markClosed(ctx context.Context, id string) (*domain.Table, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	table, err := uc.tableRepo.GetByIDForUpdate(txCtx, tx, id)
	if err != nil {
		return nil, err
	}
	if table.Status == domain.TableClosed {
		return nil, domain.ErrTableClosed
	}

	now := time.Now().UTC()
	if err := uc.tableRepo.UpdateStatus(txCtx, tx, id, domain.TableClosed, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	table.Status = domain.TableClosed
	table.UpdatedAt = now
	return table, nil
}

func (uc *TableUseCase) listActive(ctx context.Context, tableID string) ([]*domain.Session, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	active, err := uc.sessionRepo.ListActiveByTable(txCtx, tx, tableID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}
	return active, nil
}

func (uc *TableUseCase) invalidateLobby(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, lobbyCacheKey)
}

func (uc *TableUseCase) audit(ctx context.Context, action domain.AuditAction, table *domain.Table) {
	if uc.auditRepo == nil {
		return
	}

	userID := "system"
	if user, ok := domain.UserFromContext(ctx); ok {
		userID = user.ID
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: "table",
		ResourceID:   table.ID,
		AfterState:   domain.MarshalState(table),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
