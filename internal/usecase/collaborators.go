package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// KycChecker is the external KYC verification collaborator. The document
// workflow lives elsewhere; the engine only asks a yes/no question before
// releasing a withdrawal.
type KycChecker interface {
	IsWithdrawalApproved(ctx context.Context, accountID string) (bool, error)
}

// PaymentGateway is the external settlement collaborator. Deposits and
// withdrawals are recorded PENDING immediately; the gateway settles them
// asynchronously through BalanceUseCase.SettleTransaction.
type PaymentGateway interface {
	SettleDeposit(ctx context.Context, accountID string, amount decimal.Decimal, method string) (externalRef string, err error)
	InitiateWithdrawal(ctx context.Context, accountID string, amount decimal.Decimal, method string) (externalRef string, err error)
}
