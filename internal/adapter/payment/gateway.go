package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oklog/ulid/v2"
)

// Settler is implemented by the balance engine; the gateway calls back into
// it when a payment finishes.
type Settler interface {
	SettleByExternalRef(ctx context.Context, externalRef string, ok bool) error
}

// Gateway simulates an external payment processor. Deposits and withdrawals
// are acknowledged immediately and settled on a background goroutine after a
// short delay, the way a real processor's webhook would arrive.
type Gateway struct {
	settler Settler
	delay   time.Duration
	logger  *slog.Logger
}

// NewGateway creates a new Gateway. The settler is attached afterwards with
// SetSettler because gateway and balance engine reference each other.
func NewGateway(delay time.Duration, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{delay: delay, logger: logger}
}

// SetSettler wires the settlement callback.
func (g *Gateway) SetSettler(s Settler) {
	g.settler = s
}

// SettleDeposit acknowledges a deposit and schedules its settlement.
func (g *Gateway) SettleDeposit(ctx context.Context, accountID string, amount decimal.Decimal, method string) (string, error) {
	ref := fmt.Sprintf("dep_%s", ulid.Make().String())
	g.schedule(ref, accountID, "deposit", method)
	return ref, nil
}

// InitiateWithdrawal acknowledges a withdrawal and schedules its settlement.
func (g *Gateway) InitiateWithdrawal(ctx context.Context, accountID string, amount decimal.Decimal, method string) (string, error) {
	ref := fmt.Sprintf("wdr_%s", ulid.Make().String())
	g.schedule(ref, accountID, "withdrawal", method)
	return ref, nil
}

func (g *Gateway) schedule(ref, accountID, kind, method string) {
	go func() {
		time.Sleep(g.delay)

		if g.settler == nil {
			g.logger.Error("no settler attached, payment stuck pending",
				"ref", ref, "kind", kind)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.settler.SettleByExternalRef(ctx, ref, true); err != nil {
			g.logger.Error("payment settlement failed",
				"ref", ref,
				"account_id", accountID,
				"kind", kind,
				"method", method,
				"error", err,
			)
			return
		}

		g.logger.Info("payment settled",
			"ref", ref,
			"account_id", accountID,
			"kind", kind,
			"method", method,
		)
	}()
}
