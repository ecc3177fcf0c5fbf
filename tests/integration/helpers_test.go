package integration

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/adapter/payment"
	"github.com/iho/cardroom/internal/adapter/repository/postgres"
	"github.com/iho/cardroom/internal/usecase"
)

// manualGateway records refs without scheduling settlement, so tests drive
// SettleByExternalRef deterministically.
type manualGateway struct {
	seq  atomic.Int64
	refs []string
}

func (g *manualGateway) SettleDeposit(ctx context.Context, accountID string, amount decimal.Decimal, method string) (string, error) {
	ref := fmt.Sprintf("dep_test_%d", g.seq.Add(1))
	g.refs = append(g.refs, ref)
	return ref, nil
}

func (g *manualGateway) InitiateWithdrawal(ctx context.Context, accountID string, amount decimal.Decimal, method string) (string, error) {
	ref := fmt.Sprintf("wdr_test_%d", g.seq.Add(1))
	g.refs = append(g.refs, ref)
	return ref, nil
}

func (g *manualGateway) lastRef() string {
	return g.refs[len(g.refs)-1]
}

type stack struct {
	balanceUC *usecase.BalanceUseCase
	seatingUC *usecase.SeatingUseCase
	tableUC   *usecase.TableUseCase
	ledgerUC  *usecase.LedgerUseCase
	reconUC   *usecase.ReconciliationUseCase

	accountRepo *postgres.AccountRepository
	txnRepo     *postgres.TransactionRepository
	tableRepo   *postgres.TableRepository
	sessionRepo *postgres.SessionRepository
	gateway     *manualGateway
}

// newStack wires the full use case stack against a real database, with a
// manual payment gateway and no cache.
func newStack(pool *pgxpool.Pool) *stack {
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	tableRepo := postgres.NewTableRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	retrier := postgres.NewRetrier()
	idGen := postgres.NewULIDGenerator()
	gateway := &manualGateway{}

	balanceUC := usecase.NewBalanceUseCase(usecase.BalanceConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		TxnRepo:     txnRepo,
		SessionRepo: sessionRepo,
		OutboxRepo:  outboxRepo,
		AuditRepo:   auditRepo,
		IDGen:       idGen,
		Retrier:     retrier,
		Kyc:         payment.NewStaticKycChecker(),
		Gateway:     gateway,
	})

	seatingUC := usecase.NewSeatingUseCase(usecase.SeatingConfig{
		TxManager:   txManager,
		TableRepo:   tableRepo,
		SessionRepo: sessionRepo,
		TxnRepo:     txnRepo,
		AccountRepo: accountRepo,
		OutboxRepo:  outboxRepo,
		AuditRepo:   auditRepo,
		Balance:     balanceUC,
		IDGen:       idGen,
	})

	tableUC := usecase.NewTableUseCase(usecase.TableConfig{
		TxManager:   txManager,
		TableRepo:   tableRepo,
		SessionRepo: sessionRepo,
		Seating:     seatingUC,
		AuditRepo:   auditRepo,
		IDGen:       idGen,
	})

	return &stack{
		balanceUC:   balanceUC,
		seatingUC:   seatingUC,
		tableUC:     tableUC,
		ledgerUC:    usecase.NewLedgerUseCase(accountRepo, txnRepo, auditRepo, idGen, nil),
		reconUC:     usecase.NewReconciliationUseCase(accountRepo, txnRepo, tableRepo, sessionRepo, nil),
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		tableRepo:   tableRepo,
		sessionRepo: sessionRepo,
		gateway:     gateway,
	}
}
