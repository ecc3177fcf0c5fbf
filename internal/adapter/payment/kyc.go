package payment

import (
	"context"
	"sync"
)

// StaticKycChecker is an in-process KYC verifier. The document review
// workflow lives in a separate back-office system; this checker holds the
// outcome per account. Accounts default to approved unless flagged.
type StaticKycChecker struct {
	mu      sync.RWMutex
	flagged map[string]bool
}

// NewStaticKycChecker creates a new StaticKycChecker.
func NewStaticKycChecker() *StaticKycChecker {
	return &StaticKycChecker{flagged: make(map[string]bool)}
}

// Flag marks an account as requiring KYC review before withdrawals.
func (c *StaticKycChecker) Flag(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flagged[accountID] = true
}

// Clear removes the KYC flag from an account.
func (c *StaticKycChecker) Clear(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.flagged, accountID)
}

// IsWithdrawalApproved reports whether the account may withdraw.
func (c *StaticKycChecker) IsWithdrawalApproved(ctx context.Context, accountID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.flagged[accountID], nil
}
