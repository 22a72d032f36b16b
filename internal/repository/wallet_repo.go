// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"fintrack/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet inserts a wallet at its current Balance (always zero from services).
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID.
	GetWalletByID(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet and locks its row until the
	// surrounding transaction ends. q must be a transaction.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// ListWalletsByUserID returns a user's wallets ordered by id.
	ListWalletsByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.Wallet, error)
	// UpdateWalletName renames a wallet. It never touches the balance.
	UpdateWalletName(ctx context.Context, q DBExecutor, walletID int64, name string) error
	// UpdateWalletBalance adds delta (possibly negative) to a wallet's balance.
	// Only the transaction ledger calls this.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, delta decimal.Decimal) error
	// DeleteWallet removes a wallet; its movements cascade.
	DeleteWallet(ctx context.Context, q DBExecutor, walletID int64) error
	// ListBalanceDrifts returns wallets whose balance differs from the signed
	// sum of their movements.
	ListBalanceDrifts(ctx context.Context, q DBExecutor) ([]domain.BalanceDrift, error)
}
