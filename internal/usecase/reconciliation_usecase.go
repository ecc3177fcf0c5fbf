package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cardroom/internal/domain"
	"github.com/iho/cardroom/internal/infrastructure/metrics"
)

// ReconciliationUseCase verifies the system's two core invariants: every
// account balance equals the sum of its COMPLETED transactions, and every
// table's occupancy equals its count of ACTIVE sessions.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	tableRepo   TableRepository
	sessionRepo SessionRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(accountRepo AccountRepository, ledgerRepo LedgerRepository, tableRepo TableRepository, sessionRepo SessionRepository, m *metrics.Metrics) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		tableRepo:   tableRepo,
		sessionRepo: sessionRepo,
		metrics:     m,
	}
}

// BalanceDiscrepancy is an account whose balance disagrees with its ledger.
type BalanceDiscrepancy struct {
	AccountID  string          `json:"account_id"`
	Balance    decimal.Decimal `json:"balance"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Difference decimal.Decimal `json:"difference"`
}

// OccupancyDiscrepancy is a table whose counter disagrees with its sessions.
type OccupancyDiscrepancy struct {
	TableID       string `json:"table_id"`
	Occupancy     int    `json:"occupancy"`
	ActiveCount   int    `json:"active_count"`
	ReportedState string `json:"reported_state"`
	DerivedState  string `json:"derived_state"`
}

// Report is the outcome of a full reconciliation pass.
type Report struct {
	AccountsChecked        int                    `json:"accounts_checked"`
	TablesChecked          int                    `json:"tables_checked"`
	BalanceDiscrepancies   []BalanceDiscrepancy   `json:"balance_discrepancies"`
	OccupancyDiscrepancies []OccupancyDiscrepancy `json:"occupancy_discrepancies"`
	StartedAt              time.Time              `json:"started_at"`
	FinishedAt             time.Time              `json:"finished_at"`
}

// Clean reports whether the pass found no discrepancies.
func (r *Report) Clean() bool {
	return len(r.BalanceDiscrepancies) == 0 && len(r.OccupancyDiscrepancies) == 0
}

// reconcilePageSize bounds one page of accounts or tables per query.
const reconcilePageSize = 500

// Run walks all accounts and tables and reports every invariant violation.
// It never repairs; discrepancies are surfaced for operator action.
func (uc *ReconciliationUseCase) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}

	if err := uc.checkBalances(ctx, report); err != nil {
		return nil, err
	}
	if err := uc.checkOccupancy(ctx, report); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		uc.metrics.ReconciliationDiscrepancies.Set(float64(
			len(report.BalanceDiscrepancies) + len(report.OccupancyDiscrepancies)))
	}

	return report, nil
}

func (uc *ReconciliationUseCase) checkBalances(ctx context.Context, report *Report) error {
	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			return nil
		}

		for _, account := range accounts {
			sum, err := uc.ledgerRepo.CompletedSum(ctx, account.ID)
			if err != nil {
				return err
			}

			report.AccountsChecked++
			if !account.Balance.Equal(sum) {
				report.BalanceDiscrepancies = append(report.BalanceDiscrepancies, BalanceDiscrepancy{
					AccountID:  account.ID,
					Balance:    account.Balance,
					LedgerSum:  sum,
					Difference: account.Balance.Sub(sum),
				})
			}
		}

		if len(accounts) < reconcilePageSize {
			return nil
		}
	}
}

func (uc *ReconciliationUseCase) checkOccupancy(ctx context.Context, report *Report) error {
	for offset := 0; ; offset += reconcilePageSize {
		tables, err := uc.tableRepo.List(ctx, TableFilter{Limit: reconcilePageSize, Offset: offset})
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			return nil
		}

		for _, table := range tables {
			count, err := uc.sessionRepo.CountActiveByTable(ctx, table.ID)
			if err != nil {
				return err
			}

			report.TablesChecked++

			derived := table.Status
			if derived != domain.TableClosed {
				derived = domain.ResolveStatus(count, table.Capacity)
			}

			if table.Occupancy != count || derived != table.Status {
				report.OccupancyDiscrepancies = append(report.OccupancyDiscrepancies, OccupancyDiscrepancy{
					TableID:       table.ID,
					Occupancy:     table.Occupancy,
					ActiveCount:   count,
					ReportedState: string(table.Status),
					DerivedState:  string(derived),
				})
			}
		}

		if len(tables) < reconcilePageSize {
			return nil
		}
	}
}
