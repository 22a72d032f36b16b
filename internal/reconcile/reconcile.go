// internal/reconcile/reconcile.go
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// Auditor compares every wallet's stored balance with the signed sum of its
// movements. It only reports; balances are never rewritten.
type Auditor struct {
	dbExecutor repository.DBExecutor
	walletRepo repository.WalletRepository
	logger     *slog.Logger
}

// NewAuditor creates an Auditor.
func NewAuditor(dbExecutor repository.DBExecutor, walletRepo repository.WalletRepository, logger *slog.Logger) *Auditor {
	return &Auditor{dbExecutor: dbExecutor, walletRepo: walletRepo, logger: logger}
}

// Check returns the wallets whose balance has drifted and logs each one.
func (a *Auditor) Check(ctx context.Context) ([]domain.BalanceDrift, error) {
	drifts, err := a.walletRepo.ListBalanceDrifts(ctx, a.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("balance audit: %w", err)
	}
	for _, d := range drifts {
		a.logger.Warn("wallet balance drift",
			"wallet_id", d.WalletID,
			"user_id", d.UserID,
			"stored", d.StoredBalance.String(),
			"ledger", d.LedgerBalance.String(),
			"difference", d.Difference().String(),
		)
	}
	a.logger.Info("balance audit finished", "drifted_wallets", len(drifts))
	return drifts, nil
}

// Schedule registers the audit on a new cron scheduler. The caller starts
// and stops it. An empty schedule disables the audit and returns nil.
func Schedule(auditor *Auditor, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := auditor.Check(ctx); err != nil {
			auditor.logger.Error("balance audit failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule balance audit %q: %w", schedule, err)
	}
	return c, nil
}
