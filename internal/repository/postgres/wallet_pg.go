// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"

	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

const walletColumns = `id, user_id, name, balance, created_at, updated_at`

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, name, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, wallet.UserID, wallet.Name, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	return r.getWallet(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
}

// GetWalletByIDForUpdate retrieves a wallet and takes a row lock on it.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	return r.getWallet(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
}

func (r *WalletRepository) getWallet(ctx context.Context, q repository.DBExecutor, query string, id int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := q.GetContext(ctx, &wallet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %d: %w", id, err)
	}
	return &wallet, nil
}

// ListWalletsByUserID returns all wallets of a user.
func (r *WalletRepository) ListWalletsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	err := q.SelectContext(ctx, &wallets, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for user %d: %w", userID, err)
	}
	return wallets, nil
}

// UpdateWalletName renames a wallet.
func (r *WalletRepository) UpdateWalletName(ctx context.Context, q repository.DBExecutor, walletID int64, name string) error {
	result, err := q.ExecContext(ctx, `UPDATE wallets SET name = $1, updated_at = $2 WHERE id = $3`, name, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to rename wallet %d: %w", walletID, err)
	}
	return requireRow(result, util.ErrWalletNotFound)
}

// UpdateWalletBalance adds delta to the balance of a specific wallet using the provided DBExecutor.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}
	return requireRow(result, util.ErrWalletNotFound)
}

// DeleteWallet removes a wallet by ID.
func (r *WalletRepository) DeleteWallet(ctx context.Context, q repository.DBExecutor, walletID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, walletID)
	if err != nil {
		return fmt.Errorf("failed to delete wallet %d: %w", walletID, err)
	}
	return requireRow(result, util.ErrWalletNotFound)
}

// ListBalanceDrifts compares every wallet's balance with its movements.
func (r *WalletRepository) ListBalanceDrifts(ctx context.Context, q repository.DBExecutor) ([]domain.BalanceDrift, error) {
	query := `
		SELECT w.id AS wallet_id, w.user_id, w.balance AS stored_balance,
		       COALESCE(SUM(CASE WHEN tw.is_incoming THEN tw.amount ELSE -tw.amount END), 0) AS ledger_balance
		FROM wallets w
		LEFT JOIN transaction_wallets tw ON tw.wallet_id = w.id
		GROUP BY w.id, w.user_id, w.balance
		HAVING w.balance <> COALESCE(SUM(CASE WHEN tw.is_incoming THEN tw.amount ELSE -tw.amount END), 0)
		ORDER BY w.id`
	drifts := []domain.BalanceDrift{}
	if err := q.SelectContext(ctx, &drifts, query); err != nil {
		return nil, fmt.Errorf("failed to compute balance drifts: %w", err)
	}
	return drifts, nil
}

// requireRow turns a zero-row write into notFound.
func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
