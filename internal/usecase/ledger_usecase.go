package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
)

// LedgerUseCase serves account lifecycle and ledger reads. Balance mutations
// live in BalanceUseCase.
type LedgerUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, txnRepo TransactionRepository, auditRepo AuditRepository, idGen IDGenerator, m *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     m,
	}
}

// CreateAccount opens an account with a zero balance.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, userID, currency string) (*domain.Account, error) {
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		UserID:    userID,
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		Version:   1,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionAccountCreate, account)

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount returns an account by ID.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// CloseAccount deactivates an account. Further debits and credits are
// rejected; the transaction history stays readable.
func (uc *LedgerUseCase) CloseAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !account.Active {
		return domain.ErrAccountInactive
	}

	if err := uc.accountRepo.SetActive(ctx, id, false, time.Now().UTC()); err != nil {
		return err
	}

	uc.audit(ctx, domain.AuditActionAccountClose, account)
	return nil
}

// ListAccounts returns accounts page by page.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.List(ctx, limit, offset)
}

// GetTransaction returns a single ledger entry.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}

// ListTransactions returns an account's ledger newest first. The cursor is
// the ID of the last transaction from the previous page; IDs are
// time-ordered so the cursor doubles as a position in time.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, accountID, cursor string, limit int) ([]*domain.Transaction, string, error) {
	limit, _, err := domain.ValidatePagination(limit, 0)
	if err != nil {
		return nil, "", err
	}

	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, "", err
	}

	txns, err := uc.txnRepo.ListByAccount(ctx, accountID, cursor, limit)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(txns) == limit {
		next = txns[len(txns)-1].ID
	}
	return txns, next, nil
}

// ListAuditLogs returns audit entries matching the filter.
func (uc *LedgerUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	filter.Offset = offset
	return uc.auditRepo.List(ctx, filter)
}

func (uc *LedgerUseCase) audit(ctx context.Context, action domain.AuditAction, account *domain.Account) {
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
		ResourceType: "account",
		ResourceID:   account.ID,
		AfterState:   domain.MarshalState(account),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
