package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
)

// lobbyCacheKey is invalidated whenever occupancy or table status changes.
const lobbyCacheKey = "tables:lobby"

// SeatingUseCase manages seat sessions: the join/leave lifecycle, stack
// movement during play, and the idle sweeper. Money moves through the
// balance engine; this usecase owns seats, stacks, and occupancy.
//
// Lock order is fixed: account transactions commit before the table
// transaction begins. A join that fails after the buy-in debit compensates
// with a cash-out credit instead of holding both locks at once.
type SeatingUseCase struct {
	txManager      TransactionManager
	tableRepo      TableRepository
	sessionRepo    SessionRepository
	txnRepo        TransactionRepository
	accountRepo    AccountRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	balance        *BalanceUseCase
	idGen          IDGenerator
	cache          Cache
	metrics        *metrics.Metrics
	seatMultiplier int64
	idleTimeout    time.Duration
}

// SeatingConfig holds dependencies for SeatingUseCase.
type SeatingConfig struct {
	TxManager      TransactionManager
	TableRepo      TableRepository
	SessionRepo    SessionRepository
	TxnRepo        TransactionRepository
	AccountRepo    AccountRepository
	OutboxRepo     OutboxRepository
	AuditRepo      AuditRepository
	Balance        *BalanceUseCase
	IDGen          IDGenerator
	Cache          Cache
	Metrics        *metrics.Metrics
	SeatMultiplier int64
	IdleTimeout    time.Duration
}

// NewSeatingUseCase creates a new SeatingUseCase.
func NewSeatingUseCase(cfg SeatingConfig) *SeatingUseCase {
	if cfg.SeatMultiplier <= 0 {
		cfg.SeatMultiplier = DefaultSeatMultiplier
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultSessionIdleTimeout
	}
	return &SeatingUseCase{
		txManager:      cfg.TxManager,
		tableRepo:      cfg.TableRepo,
		sessionRepo:    cfg.SessionRepo,
		txnRepo:        cfg.TxnRepo,
		accountRepo:    cfg.AccountRepo,
		outboxRepo:     cfg.OutboxRepo,
		auditRepo:      cfg.AuditRepo,
		balance:        cfg.Balance,
		idGen:          cfg.IDGen,
		cache:          cfg.Cache,
		metrics:        cfg.Metrics,
		seatMultiplier: cfg.SeatMultiplier,
		idleTimeout:    cfg.IdleTimeout,
	}
}

// JoinTable seats an account at a table. The buy-in is debited first; if the
// seat cannot be taken afterwards the debit is compensated with a credit and
// the original seating error is returned.
func (uc *SeatingUseCase) JoinTable(ctx context.Context, tableID, accountID string, buyIn decimal.Decimal) (*domain.Session, error) {
	table, err := uc.tableRepo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if err := table.ValidateSeat(); err != nil {
		return nil, err
	}
	if err := table.ValidateBuyIn(buyIn, uc.seatMultiplier); err != nil {
		return nil, err
	}

	sessionID := uc.idGen.Generate()

	if _, err := uc.balance.ReserveBuyIn(ctx, accountID, buyIn, sessionID); err != nil {
		return nil, err
	}

	session, seatErr := uc.seat(ctx, table.ID, accountID, sessionID, buyIn)
	if seatErr != nil {
		if _, compErr := uc.balance.ReleaseBuyIn(ctx, accountID, buyIn, sessionID); compErr != nil {
			// Both the seat and the compensation failed. The buy-in debit
			// stands until the cash-out is retried; surface both causes.
			return nil, errors.Join(seatErr, fmt.Errorf("buy-in compensation failed: %w", compErr))
		}
		return nil, seatErr
	}

	uc.invalidateLobby(ctx)
	uc.audit(ctx, domain.AuditActionSessionJoin, session)

	if uc.metrics != nil {
		uc.metrics.SessionsJoined.Inc()
	}

	return session, nil
}

// seat runs the table-side transaction: lock the table, recheck capacity,
// pick the lowest free seat, create the session, and bump occupancy.
func (uc *SeatingUseCase) seat(ctx context.Context, tableID, accountID, sessionID string, buyIn decimal.Decimal) (*domain.Session, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	table, err := uc.tableRepo.GetByIDForUpdate(txCtx, tx, tableID)
	if err != nil {
		return nil, err
	}
	if err := table.ValidateSeat(); err != nil {
		return nil, err
	}

	active, err := uc.sessionRepo.ListActiveByTable(txCtx, tx, tableID)
	if err != nil {
		return nil, err
	}

	for _, s := range active {
		if s.AccountID == accountID {
			return nil, domain.ErrInvalidState
		}
	}

	seatNumber, err := lowestFreeSeat(active, table.Capacity)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         sessionID,
		TableID:    tableID,
		AccountID:  accountID,
		SeatNumber: seatNumber,
		BuyIn:      buyIn,
		Stack:      buyIn,
		Status:     domain.SessionActive,
		JoinedAt:   now,
		LastSeenAt: now,
	}

	if err := uc.sessionRepo.Create(txCtx, tx, session); err != nil {
		return nil, err
	}

	occupancy := table.Occupancy + 1
	status := domain.ResolveStatus(occupancy, table.Capacity)
	if err := uc.tableRepo.UpdateOccupancy(txCtx, tx, tableID, occupancy, status, now); err != nil {
		return nil, err
	}

	if err := uc.emitSessionJoined(txCtx, tx, session, now); err != nil {
		return nil, err
	}
	if status != table.Status {
		if err := uc.emitTableStatus(txCtx, tx, tableID, status, occupancy, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return session, nil
}

// lowestFreeSeat picks the smallest seat number not held by an active session.
func lowestFreeSeat(active []*domain.Session, capacity int) (int, error) {
	taken := make(map[int]bool, len(active))
	for _, s := range active {
		taken[s.SeatNumber] = true
	}
	for seat := 1; seat <= capacity; seat++ {
		if !taken[seat] {
			return seat, nil
		}
	}
	return 0, domain.ErrTableFull
}

// LeaveTable closes a session and credits the remaining stack back to the
// account. The credit happens first under a LEAVING marker so a crash between
// the two steps is retried by the sweeper; the cash-out check by session ID
// keeps the credit exactly-once across retries.
func (uc *SeatingUseCase) LeaveTable(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.markLeaving(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := uc.creditStack(ctx, session); err != nil {
		return nil, err
	}

	closed, err := uc.unseat(ctx, session, "leave")
	if err != nil {
		return nil, err
	}

	uc.invalidateLobby(ctx)
	uc.audit(ctx, domain.AuditActionSessionLeave, closed)

	if uc.metrics != nil {
		uc.metrics.SessionsClosed.WithLabelValues("leave").Inc()
	}

	return closed, nil
}

// markLeaving flips ACTIVE to LEAVING, keeping the stack for the credit step.
// A session already LEAVING is picked up as-is so a retried leave resumes.
func (uc *SeatingUseCase) markLeaving(ctx context.Context, sessionID string) (*domain.Session, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	session, err := uc.sessionRepo.GetByIDForUpdate(txCtx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionActive:
		if err := uc.sessionRepo.UpdateStatus(txCtx, tx, sessionID, domain.SessionLeaving, session.Stack, nil); err != nil {
			return nil, err
		}
		session.Status = domain.SessionLeaving
	case domain.SessionLeaving:
		// Resuming a leave that crashed after the flip.
	default:
		return nil, domain.ErrSessionNotActive
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return session, nil
}

// creditStack cashes the remaining stack out to the account, once.
func (uc *SeatingUseCase) creditStack(ctx context.Context, session *domain.Session) error {
	if session.Stack.IsZero() {
		return nil
	}

	credited, err := uc.txnRepo.ExistsBySession(ctx, session.ID, domain.KindCashOut)
	if err != nil {
		return err
	}
	if credited {
		return nil
	}

	_, err = uc.balance.ReleaseBuyIn(ctx, session.AccountID, session.Stack, session.ID)
	return err
}

// unseat runs the table-side close: session CLOSED with a zeroed stack,
// occupancy decremented, status re-resolved.
func (uc *SeatingUseCase) unseat(ctx context.Context, session *domain.Session, reason string) (*domain.Session, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	table, err := uc.tableRepo.GetByIDForUpdate(txCtx, tx, session.TableID)
	if err != nil {
		return nil, err
	}

	current, err := uc.sessionRepo.GetByIDForUpdate(txCtx, tx, session.ID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.SessionClosed {
		return current, nil
	}

	now := time.Now().UTC()
	if err := uc.sessionRepo.UpdateStatus(txCtx, tx, session.ID, domain.SessionClosed, decimal.Zero, &now); err != nil {
		return nil, err
	}

	// Occupancy already at zero with a non-closed session means the counter
	// drifted; fail so reconciliation surfaces it instead of absorbing it.
	if table.Occupancy == 0 {
		return nil, domain.ErrInvalidState
	}
	occupancy := table.Occupancy - 1

	status := table.Status
	if status != domain.TableClosed {
		status = domain.ResolveStatus(occupancy, table.Capacity)
	}
	if err := uc.tableRepo.UpdateOccupancy(txCtx, tx, session.TableID, occupancy, status, now); err != nil {
		return nil, err
	}

	if err := uc.emitSessionClosed(txCtx, tx, session, reason, now); err != nil {
		return nil, err
	}
	if status != table.Status {
		if err := uc.emitTableStatus(txCtx, tx, session.TableID, status, occupancy, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	closed := *current
	closed.Status = domain.SessionClosed
	closed.Stack = decimal.Zero
	closed.ClosedAt = &now
	return &closed, nil
}

// ApplyStackDelta adjusts a session's stack by a hand result or a mid-session
// chip movement. When moneyMovement is true the delta also moves through the
// wallet (a BET debit funds a positive delta, a WIN credit drains a negative
// one); otherwise chips only shuffle between stacks on the table and the
// wallet is untouched. The wallet side commits first; if the stack write
// then fails, the posted transaction is compensated with its reversal so
// the wallet and the table never disagree about where the delta went.
func (uc *SeatingUseCase) ApplyStackDelta(ctx context.Context, sessionID string, delta decimal.Decimal, moneyMovement bool) (*domain.Session, error) {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.ValidateStackDelta(delta); err != nil {
		return nil, err
	}

	if moneyMovement {
		if err := uc.moveMoney(ctx, session.AccountID, sessionID, delta); err != nil {
			return nil, err
		}
	}

	current, stackErr := uc.updateStack(ctx, sessionID, delta)
	if stackErr != nil {
		if moneyMovement {
			if _, compErr := uc.balance.ReverseStackMovement(ctx, session.AccountID, delta, sessionID); compErr != nil {
				// Both the stack write and the compensation failed. The
				// posted transaction stands; surface both causes.
				return nil, errors.Join(stackErr, fmt.Errorf("wallet compensation failed: %w", compErr))
			}
		}
		return nil, stackErr
	}

	if uc.metrics != nil {
		uc.metrics.StackDeltasApplied.Inc()
	}

	return current, nil
}

// moveMoney posts the wallet side of a money-movement delta: a positive
// delta is funded by a BET debit, a negative one drains into a WIN credit.
func (uc *SeatingUseCase) moveMoney(ctx context.Context, accountID, sessionID string, delta decimal.Decimal) error {
	if delta.IsPositive() {
		_, err := uc.balance.PostBet(ctx, accountID, delta, sessionID)
		return err
	}
	_, err := uc.balance.PostWin(ctx, accountID, delta.Neg(), sessionID)
	return err
}

// updateStack applies the delta under a row lock, revalidating against the
// locked session.
func (uc *SeatingUseCase) updateStack(ctx context.Context, sessionID string, delta decimal.Decimal) (*domain.Session, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	current, err := uc.sessionRepo.GetByIDForUpdate(txCtx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := current.ValidateStackDelta(delta); err != nil {
		return nil, err
	}

	newStack := current.Stack.Add(delta)
	if err := uc.sessionRepo.UpdateStack(txCtx, tx, sessionID, newStack); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	current.Stack = newStack
	return current, nil
}

// Heartbeat records player liveness; sessions without one past the idle
// timeout are swept.
func (uc *SeatingUseCase) Heartbeat(ctx context.Context, sessionID string) error {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.SessionActive {
		return domain.ErrSessionNotActive
	}
	return uc.sessionRepo.Touch(ctx, sessionID, time.Now().UTC())
}

// SweepIdleSessions force-leaves sessions with no heartbeat past the idle
// timeout, and finishes LEAVING sessions stranded by a crashed leave. Returns
// the number of sessions closed.
func (uc *SeatingUseCase) SweepIdleSessions(ctx context.Context) (int, error) {
	idleSince := time.Now().UTC().Add(-uc.idleTimeout)

	idle, err := uc.sessionRepo.ListIdle(ctx, idleSince, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	var errs []error
	for _, session := range idle {
		if err := uc.sweepOne(ctx, session); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
			continue
		}
		swept++
	}

	if swept > 0 {
		uc.invalidateLobby(ctx)
	}
	if uc.metrics != nil && swept > 0 {
		uc.metrics.SessionsClosed.WithLabelValues("sweep").Add(float64(swept))
	}

	return swept, errors.Join(errs...)
}

func (uc *SeatingUseCase) sweepOne(ctx context.Context, session *domain.Session) error {
	marked, err := uc.markLeaving(ctx, session.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotActive) {
			return nil
		}
		return err
	}
	if err := uc.creditStack(ctx, marked); err != nil {
		return err
	}
	closed, err := uc.unseat(ctx, marked, "sweep")
	if err != nil {
		return err
	}
	uc.audit(ctx, domain.AuditActionSessionSweep, closed)
	return nil
}

func (uc *SeatingUseCase) emitSessionJoined(ctx context.Context, tx Transaction, session *domain.Session, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   session.ID,
		AggregateType: domain.AggregateTypeSession,
		EventType:     domain.EventTypeSessionJoined,
		Payload: map[string]any{
			"session_id":  session.ID,
			"table_id":    session.TableID,
			"account_id":  session.AccountID,
			"seat_number": session.SeatNumber,
			"buy_in":      session.BuyIn.String(),
		},
		CreatedAt: now,
	})
}

func (uc *SeatingUseCase) emitSessionClosed(ctx context.Context, tx Transaction, session *domain.Session, reason string, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   session.ID,
		AggregateType: domain.AggregateTypeSession,
		EventType:     domain.EventTypeSessionClosed,
		Payload: map[string]any{
			"session_id": session.ID,
			"table_id":   session.TableID,
			"account_id": session.AccountID,
			"stack":      session.Stack.String(),
			"reason":     reason,
		},
		CreatedAt: now,
	})
}

func (uc *SeatingUseCase) emitTableStatus(ctx context.Context, tx Transaction, tableID string, status domain.TableStatus, occupancy int, now time.Time) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   tableID,
		AggregateType: domain.AggregateTypeTable,
		EventType:     domain.EventTypeTableStatusChanged,
		Payload: map[string]any{
			"table_id":  tableID,
			"status":    string(status),
			"occupancy": occupancy,
		},
		CreatedAt: now,
	})
}

func (uc *SeatingUseCase) invalidateLobby(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	_ = uc.cache.Delete(ctx, lobbyCacheKey)
}

func (uc *SeatingUseCase) audit(ctx context.Context, action domain.AuditAction, session *domain.Session) {
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
		ResourceType: "session",
		ResourceID:   session.ID,
		AfterState:   domain.MarshalState(session),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
