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

// BalanceUseCase is the only path by which account balances change. Every
// mutation appends a Transaction and applies the balance update with an
// optimistic version check; concurrent writers on one account retry on
// conflict and fail with ErrContention after the retrier gives up.
type BalanceUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	sessionRepo SessionRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	kyc         KycChecker
	gateway     PaymentGateway
	metrics     *metrics.Metrics
}

// BalanceConfig holds dependencies for BalanceUseCase.
type BalanceConfig struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	TxnRepo     TransactionRepository
	SessionRepo SessionRepository
	OutboxRepo  OutboxRepository
	AuditRepo   AuditRepository
	IDGen       IDGenerator
	Retrier     Retrier
	Kyc         KycChecker
	Gateway     PaymentGateway
	Metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(cfg BalanceConfig) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:   cfg.TxManager,
		accountRepo: cfg.AccountRepo,
		txnRepo:     cfg.TxnRepo,
		sessionRepo: cfg.SessionRepo,
		outboxRepo:  cfg.OutboxRepo,
		auditRepo:   cfg.AuditRepo,
		idGen:       cfg.IDGen,
		retrier:     cfg.Retrier,
		kyc:         cfg.Kyc,
		gateway:     cfg.Gateway,
		metrics:     cfg.Metrics,
	}
}

// Deposit records a PENDING DEPOSIT and hands settlement to the payment
// gateway. The balance is credited when the gateway confirms through
// SettleTransaction; a failed settlement leaves the balance untouched.
func (uc *BalanceUseCase) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateMoveAmount(amount); err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, domain.ErrAccountInactive
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   accountID,
		Kind:        domain.KindDeposit,
		Amount:      amount,
		Status:      domain.StatusPending,
		Description: description,
		CreatedAt:   now,
	}

	if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	ref, err := uc.gateway.SettleDeposit(ctx, accountID, amount, method)
	if err != nil {
		// The gateway never saw the request; fail the pending row directly.
		_ = uc.SettleTransaction(ctx, txn.ID, false)
		return nil, fmt.Errorf("payment gateway rejected deposit: %w", err)
	}

	txn.ExternalRef = ref
	if err := uc.txnRepo.SetExternalRef(ctx, txn.ID, ref); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionDeposit, txn)

	if uc.metrics != nil {
		uc.metrics.DepositsInitiated.Inc()
	}

	return txn, nil
}

// Withdraw reserves funds and records a PENDING WITHDRAW. Requires KYC
// approval. The reservation keeps the funds out of the available balance
// until the gateway settles or fails the withdrawal.
func (uc *BalanceUseCase) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, method, description string) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateMoveAmount(amount); err != nil {
		return nil, err
	}

	approved, err := uc.kyc.IsWithdrawalApproved(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("kyc check failed: %w", err)
	}
	if !approved {
		return nil, domain.ErrKycRequired
	}

	var txn *domain.Transaction

	err = uc.withContention(ctx, func() error {
		txn = nil

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		account, err := uc.accountRepo.GetByIDTx(txCtx, tx, accountID)
		if err != nil {
			return err
		}

		if err := account.ValidateDebit(amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		txn = &domain.Transaction{
			ID:          uc.idGen.Generate(),
			AccountID:   accountID,
			Kind:        domain.KindWithdraw,
			Amount:      amount.Neg(),
			Status:      domain.StatusPending,
			Description: description,
			CreatedAt:   now,
		}

		if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
			return err
		}

		newReserved := account.Reserved.Add(amount)
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, accountID, account.Balance, newReserved, account.Version, now); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	ref, err := uc.gateway.InitiateWithdrawal(ctx, accountID, amount, method)
	if err != nil {
		// Release the reservation; the gateway never saw the request.
		_ = uc.SettleTransaction(ctx, txn.ID, false)
		return nil, fmt.Errorf("payment gateway rejected withdrawal: %w", err)
	}

	txn.ExternalRef = ref
	if err := uc.txnRepo.SetExternalRef(ctx, txn.ID, ref); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionWithdraw, txn)

	if uc.metrics != nil {
		uc.metrics.WithdrawalsInitiated.Inc()
	}

	return txn, nil
}

// SettleByExternalRef resolves a gateway callback to the pending transaction
// it settles.
func (uc *BalanceUseCase) SettleByExternalRef(ctx context.Context, externalRef string, ok bool) error {
	txn, err := uc.txnRepo.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return err
	}
	return uc.SettleTransaction(ctx, txn.ID, ok)
}

// SettleTransaction finalizes a PENDING deposit or withdrawal. A settled
// deposit credits the balance; a settled withdrawal debits it and releases
// the reservation. A failed settlement only releases the reservation.
func (uc *BalanceUseCase) SettleTransaction(ctx context.Context, txnID string, ok bool) error {
	return uc.withContention(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		txn, err := uc.txnRepo.GetByIDTx(txCtx, tx, txnID)
		if err != nil {
			return err
		}

		if txn.Status != domain.StatusPending {
			return domain.ErrInvalidState
		}

		account, err := uc.accountRepo.GetByIDTx(txCtx, tx, txn.AccountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		newBalance := account.Balance
		newReserved := account.Reserved
		status := domain.StatusFailed

		var before, after decimal.Decimal

		if txn.Kind == domain.KindWithdraw {
			newReserved = newReserved.Sub(txn.Amount.Abs())
			if newReserved.IsNegative() {
				newReserved = decimal.Zero
			}
		}

		if ok {
			status = domain.StatusCompleted
			before = account.Balance
			after = account.Balance.Add(txn.Amount)
			newBalance = after
		}

		if err := uc.txnRepo.Complete(txCtx, tx, txn.ID, status, before, after, now); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, newReserved, account.Version, now); err != nil {
			return err
		}

		eventType := domain.EventTypeTransactionCompleted
		if !ok {
			eventType = domain.EventTypeTransactionFailed
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   txn.ID,
			AggregateType: domain.AggregateTypeTransaction,
			EventType:     eventType,
			Payload: map[string]any{
				"transaction_id": txn.ID,
				"account_id":     txn.AccountID,
				"kind":           string(txn.Kind),
				"amount":         txn.Amount.String(),
				"balance_after":  newBalance.String(),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		if err := tx.Commit(txCtx); err != nil {
			return err
		}

		if uc.metrics != nil {
			uc.metrics.TransactionsSettled.WithLabelValues(string(txn.Kind), string(status)).Inc()
		}

		return nil
	})
}

// PostBet moves funds from the wallet onto the table: the account is debited
// and the caller grows the session stack by the same amount.
func (uc *BalanceUseCase) PostBet(ctx context.Context, accountID string, amount decimal.Decimal, sessionID string) (*domain.Transaction, error) {
	if err := uc.requireActiveSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.apply(ctx, accountID, domain.KindBet, amount.Neg(), "table bet", sessionID)
}

// PostWin moves funds off the table into the wallet.
func (uc *BalanceUseCase) PostWin(ctx context.Context, accountID string, amount decimal.Decimal, sessionID string) (*domain.Transaction, error) {
	if err := uc.requireActiveSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.apply(ctx, accountID, domain.KindWin, amount, "table win", sessionID)
}

// ReverseStackMovement compensates a bet or win whose matching stack update
// failed. The session may already be LEAVING or CLOSED by then, so unlike
// PostBet/PostWin the reversal does not require an active session.
func (uc *BalanceUseCase) ReverseStackMovement(ctx context.Context, accountID string, delta decimal.Decimal, sessionID string) (*domain.Transaction, error) {
	if delta.IsPositive() {
		return uc.apply(ctx, accountID, domain.KindWin, delta, "bet reversal", sessionID)
	}
	return uc.apply(ctx, accountID, domain.KindBet, delta, "win reversal", sessionID)
}

// ReserveBuyIn debits a buy-in ahead of seat allocation. Callers must
// guarantee ReleaseBuyIn on every failure path after this succeeds.
func (uc *BalanceUseCase) ReserveBuyIn(ctx context.Context, accountID string, amount decimal.Decimal, sessionID string) (*domain.Transaction, error) {
	return uc.apply(ctx, accountID, domain.KindBuyIn, amount.Neg(), "table buy-in", sessionID)
}

// ReleaseBuyIn credits funds back to the account: the compensation for a
// failed seat reservation, and the cash-out on leave.
func (uc *BalanceUseCase) ReleaseBuyIn(ctx context.Context, accountID string, amount decimal.Decimal, sessionID string) (*domain.Transaction, error) {
	return uc.apply(ctx, accountID, domain.KindCashOut, amount, "table cash-out", sessionID)
}

// apply appends an immediately COMPLETED transaction and the matching
// balance update as one unit. signedAmount follows the ledger convention:
// negative for debits, positive for credits.
func (uc *BalanceUseCase) apply(ctx context.Context, accountID string, kind domain.TransactionKind, signedAmount decimal.Decimal, description, sessionID string) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(kind, signedAmount); err != nil {
		return nil, err
	}
	if err := domain.ValidateMoveAmount(signedAmount); err != nil {
		return nil, err
	}

	var txn *domain.Transaction

	err := uc.withContention(ctx, func() error {
		txn = nil

		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		account, err := uc.accountRepo.GetByIDTx(txCtx, tx, accountID)
		if err != nil {
			return err
		}

		if signedAmount.IsNegative() {
			if err := account.ValidateDebit(signedAmount.Abs()); err != nil {
				return err
			}
		} else if err := account.ValidateCredit(signedAmount); err != nil {
			return err
		}

		now := time.Now().UTC()
		newBalance := account.Balance.Add(signedAmount)

		txn = &domain.Transaction{
			ID:            uc.idGen.Generate(),
			AccountID:     accountID,
			Kind:          kind,
			Amount:        signedAmount,
			BalanceBefore: account.Balance,
			BalanceAfter:  newBalance,
			Status:        domain.StatusCompleted,
			Description:   description,
			SessionID:     sessionID,
			CreatedAt:     now,
			CompletedAt:   &now,
		}

		if err := uc.txnRepo.Create(txCtx, tx, txn); err != nil {
			return err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, accountID, newBalance, account.Reserved, account.Version, now); err != nil {
			return err
		}

		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   txn.ID,
			AggregateType: domain.AggregateTypeTransaction,
			EventType:     domain.EventTypeTransactionCompleted,
			Payload: map[string]any{
				"transaction_id": txn.ID,
				"account_id":     accountID,
				"kind":           string(kind),
				"amount":         signedAmount.String(),
				"balance_after":  newBalance.String(),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsPosted.WithLabelValues(string(kind)).Inc()
	}

	return txn, nil
}

// withContention runs op through the retrier and maps conflict exhaustion to
// ErrContention.
func (uc *BalanceUseCase) withContention(ctx context.Context, op func() error) error {
	err := uc.retrier.Retry(ctx, op)
	if errors.Is(err, domain.ErrConflict) {
		return domain.ErrContention
	}
	return err
}

func (uc *BalanceUseCase) requireActiveSession(ctx context.Context, sessionID string) error {
	session, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != domain.SessionActive {
		return domain.ErrSessionNotActive
	}
	return nil
}

func (uc *BalanceUseCase) audit(ctx context.Context, action domain.AuditAction, txn *domain.Transaction) {
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
		ResourceType: "transaction",
		ResourceID:   txn.ID,
		AfterState:   domain.MarshalState(txn),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
