// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWalletName is the wallet every user gets at sign-up.
const DefaultWalletName = "Cash"

// Wallet represents a user's wallet. Balance is a cache of the signed sum
// of the wallet's movements and is only changed by the ledger.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"userId"`
	Name      string          `db:"name" json:"name"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(userID int64, name string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,
		Name:      name,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BalanceDrift is a wallet whose stored balance disagrees with its movements.
type BalanceDrift struct {
	WalletID      int64           `db:"wallet_id" json:"walletId"`
	UserID        int64           `db:"user_id" json:"userId"`
	StoredBalance decimal.Decimal `db:"stored_balance" json:"storedBalance"`
	LedgerBalance decimal.Decimal `db:"ledger_balance" json:"ledgerBalance"`
}

// Difference is stored minus ledger.
func (d BalanceDrift) Difference() decimal.Decimal {
	return d.StoredBalance.Sub(d.LedgerBalance)
}
