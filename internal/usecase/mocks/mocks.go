package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc        func(ctx context.Context, account *domain.Account) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTxFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, balance, reserved decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	SetActiveFunc     func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores an account directly, bypassing any stubbed CreateFunc.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance, reserved decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, reserved, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Version != expectedVersion {
		return domain.ErrConflict
	}
	acc.Balance = balance
	acc.Reserved = reserved
	acc.Version++
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = active
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var accounts []*domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) >= limit {
			break
		}
		copied := *m.accounts[id]
		accounts = append(accounts, &copied)
	}
	return accounts, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
	order        []string

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByExternalRefFunc func(ctx context.Context, externalRef string) (*domain.Transaction, error)
	CompleteFunc         func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceBefore, balanceAfter decimal.Decimal, completedAt time.Time) error
	ExistsBySessionFunc  func(ctx context.Context, sessionID string, kind domain.TransactionKind) (bool, error)
	ListByAccountFunc    func(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

// All returns every stored transaction in insertion order.
func (m *MockTransactionRepository) All() []*domain.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Transaction, 0, len(m.order))
	for _, id := range m.order {
		copied := *m.transactions[id]
		out = append(out, &copied)
	}
	return out
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *txn
	m.transactions[txn.ID] = &copied
	m.order = append(m.order, txn.ID)
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.transactions[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Transaction, error) {
	if m.GetByExternalRefFunc != nil {
		return m.GetByExternalRefFunc(ctx, externalRef)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.ExternalRef == externalRef {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) SetExternalRef(ctx context.Context, id, externalRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.ExternalRef = externalRef
	return nil
}

func (m *MockTransactionRepository) Complete(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, balanceBefore, balanceAfter decimal.Decimal, completedAt time.Time) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, tx, id, status, balanceBefore, balanceAfter, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if !txn.Status.CanTransitionTo(status) {
		return domain.ErrInvalidState
	}
	txn.Status = status
	txn.BalanceBefore = balanceBefore
	txn.BalanceAfter = balanceAfter
	txn.CompletedAt = &completedAt
	return nil
}

func (m *MockTransactionRepository) ExistsBySession(ctx context.Context, sessionID string, kind domain.TransactionKind) (bool, error) {
	if m.ExistsBySessionFunc != nil {
		return m.ExistsBySessionFunc(ctx, sessionID, kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.transactions {
		if txn.SessionID == sessionID && txn.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, cursor, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Transaction
	started := cursor == ""
	for i := len(m.order) - 1; i >= 0; i-- {
		txn := m.transactions[m.order[i]]
		if txn.AccountID != accountID {
			continue
		}
		if !started {
			if txn.ID == cursor {
				started = true
			}
			continue
		}
		if len(out) >= limit {
			break
		}
		copied := *txn
		out = append(out, &copied)
	}
	return out, nil
}

// CompletedSum lets the mock double as a LedgerRepository.
func (m *MockTransactionRepository) CompletedSum(ctx context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, txn := range m.transactions {
		if txn.AccountID == accountID && txn.Status == domain.StatusCompleted {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

// MockTableRepository is a mock implementation of TableRepository.
type MockTableRepository struct {
	mu     sync.RWMutex
	tables map[string]*domain.Table

	CreateFunc           func(ctx context.Context, table *domain.Table) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Table, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Table, error)
	UpdateOccupancyFunc  func(ctx context.Context, tx usecase.Transaction, id string, occupancy int, status domain.TableStatus, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error)
}

func NewMockTableRepository() *MockTableRepository {
	return &MockTableRepository{
		tables: make(map[string]*domain.Table),
	}
}

func (m *MockTableRepository) Seed(table *domain.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
}

func (m *MockTableRepository) Create(ctx context.Context, table *domain.Table) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table.ID] = table
	return nil
}

func (m *MockTableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if table, ok := m.tables[id]; ok {
		copied := *table
		return &copied, nil
	}
	return nil, domain.ErrTableNotFound
}

func (m *MockTableRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Table, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTableRepository) UpdateOccupancy(ctx context.Context, tx usecase.Transaction, id string, occupancy int, status domain.TableStatus, updatedAt time.Time) error {
	if m.UpdateOccupancyFunc != nil {
		return m.UpdateOccupancyFunc(ctx, tx, id, occupancy, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[id]
	if !ok {
		return domain.ErrTableNotFound
	}
	table.Occupancy = occupancy
	table.Status = status
	table.UpdatedAt = updatedAt
	return nil
}

func (m *MockTableRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TableStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[id]
	if !ok {
		return domain.ErrTableNotFound
	}
	table.Status = status
	table.UpdatedAt = updatedAt
	return nil
}

func (m *MockTableRepository) List(ctx context.Context, filter usecase.TableFilter) ([]*domain.Table, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*domain.Table
	for _, id := range ids {
		table := m.tables[id]
		if filter.Game != "" && table.Game != filter.Game {
			continue
		}
		if filter.Status != "" && table.Status != filter.Status {
			continue
		}
		copied := *table
		out = append(out, &copied)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, session *domain.Session) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Session, error)
	UpdateStackFunc  func(ctx context.Context, tx usecase.Transaction, id string, stack decimal.Decimal) error
	UpdateStatusFunc func(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, stack decimal.Decimal, closedAt *time.Time) error
	ListIdleFunc     func(ctx context.Context, idleSince time.Time, limit int) ([]*domain.Session, error)
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionRepository) Seed(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MockSessionRepository) Create(ctx context.Context, tx usecase.Transaction, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if session, ok := m.sessions[id]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Session, error) {
	return m.GetByID(ctx, id)
}

func (m *MockSessionRepository) ListActiveByTable(ctx context.Context, tx usecase.Transaction, tableID string) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Session
	for _, session := range m.sessions {
		if session.TableID == tableID && session.Status == domain.SessionActive {
			copied := *session
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m *MockSessionRepository) CountActiveByTable(ctx context.Context, tableID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, session := range m.sessions {
		if session.TableID == tableID && session.Status == domain.SessionActive {
			count++
		}
	}
	return count, nil
}

func (m *MockSessionRepository) UpdateStack(ctx context.Context, tx usecase.Transaction, id string, stack decimal.Decimal) error {
	if m.UpdateStackFunc != nil {
		return m.UpdateStackFunc(ctx, tx, id, stack)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Stack = stack
	return nil
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.SessionStatus, stack decimal.Decimal, closedAt *time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, stack, closedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Status = status
	session.Stack = stack
	session.ClosedAt = closedAt
	return nil
}

func (m *MockSessionRepository) Touch(ctx context.Context, id string, seenAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.LastSeenAt = seenAt
	return nil
}

func (m *MockSessionRepository) ListIdle(ctx context.Context, idleSince time.Time, limit int) ([]*domain.Session, error) {
	if m.ListIdleFunc != nil {
		return m.ListIdleFunc(ctx, idleSince, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Session
	for _, session := range m.sessions {
		if session.Status == domain.SessionClosed {
			continue
		}
		if session.LastSeenAt.After(idleSince) && session.Status != domain.SessionLeaving {
			continue
		}
		if len(out) >= limit {
			break
		}
		copied := *session
		out = append(out, &copied)
	}
	return out, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns all stored events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, event := range m.events {
		if !event.Published {
			out = append(out, event)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			event.Published = true
			event.PublishedAt = &publishedAt
			return nil
		}
	}
	return errors.New("outbox event not found")
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, event := range m.events {
		if !event.Published || event.CreatedAt.After(before) {
			kept = append(kept, event)
		}
	}
	m.events = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, log := range m.logs {
		if filter.Action != "" && log.Action != filter.Action {
			continue
		}
		if filter.ResourceID != "" && log.ResourceID != filter.ResourceID {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	Committed    bool
	RolledBack   bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager is a mock transaction manager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockRetrier retries immediately up to MaxAttempts on conflict.
type MockRetrier struct {
	MaxAttempts int
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{MaxAttempts: 3}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	var err error
	for i := 0; i < m.MaxAttempts; i++ {
		err = operation()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	Prefix  string
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{Prefix: "id"}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("%s-%04d", m.Prefix, m.counter)
}

// MockCache is an in-memory Cache.
type MockCache struct {
	mu      sync.RWMutex
	data    map[string]string
	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", errors.New("cache miss")
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}
