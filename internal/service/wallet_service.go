// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"

	"github.com/shopspring/decimal"
)

// CreateWalletInput carries the fields of a new wallet.
type CreateWalletInput struct {
	Name    string
	Balance decimal.Decimal
}

// UpdateWalletInput is a partial update. Nil fields keep their current value.
type UpdateWalletInput struct {
	Name    *string
	Balance *decimal.Decimal
}

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	FindAll(ctx context.Context, userID int64) ([]domain.Wallet, error)
	FindOne(ctx context.Context, userID, id int64) (*domain.Wallet, error)
	Create(ctx context.Context, userID int64, input CreateWalletInput) (*domain.Wallet, error)
	Update(ctx context.Context, userID, id int64, input UpdateWalletInput) (*domain.Wallet, error)
	Remove(ctx context.Context, userID, id int64) error
}

// walletService implements the WalletService interface.
type walletService struct {
	txRunner     *TxRunner
	dbExecutor   repository.DBExecutor
	walletRepo   repository.WalletRepository
	categoryRepo repository.CategoryRepository
	ledger       TransactionService
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	txRunner *TxRunner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	categoryRepo repository.CategoryRepository,
	ledger TransactionService,
) WalletService {
	return &walletService{
		txRunner:     txRunner,
		dbExecutor:   dbExecutor,
		walletRepo:   walletRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
	}
}

// FindAll lists the user's wallets.
func (s *walletService) FindAll(ctx context.Context, userID int64) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListWalletsByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// FindOne returns a wallet owned by the user.
func (s *walletService) FindOne(ctx context.Context, userID, id int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get wallet %d: %w", id, err)
	}
	if wallet.UserID != userID {
		return nil, fmt.Errorf("get wallet %d: %w", id, util.ErrWalletNotFound)
	}
	return wallet, nil
}

// Create inserts a wallet with a zero balance. A positive opening balance is
// booked as an income balance correction in the same unit of work.
func (s *walletService) Create(ctx context.Context, userID int64, input CreateWalletInput) (*domain.Wallet, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("create wallet: name is required: %w", util.ErrInvalidInput)
	}
	if input.Balance.IsNegative() {
		return nil, fmt.Errorf("create wallet: %w", util.ErrNegativeBalance)
	}
	if !util.HasMoneyScale(input.Balance) {
		return nil, fmt.Errorf("create wallet: balance has more than %d decimal places: %w", util.MoneyScale, util.ErrInvalidInput)
	}
	if !util.FitsMoney(input.Balance) {
		return nil, fmt.Errorf("create wallet: balance must be less than %s: %w", util.MaxMoney, util.ErrInvalidInput)
	}

	var created *domain.Wallet
	err := s.txRunner.WithTx(ctx, "create wallet", func(q repository.DBExecutor) error {
		wallet := domain.NewWallet(userID, name)
		if err := s.walletRepo.CreateWallet(ctx, q, wallet); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}

		if input.Balance.IsPositive() {
			if err := s.bookCorrection(ctx, q, userID, wallet.ID, input.Balance); err != nil {
				return fmt.Errorf("create wallet %d: %w", wallet.ID, err)
			}
		}

		fresh, err := s.walletRepo.GetWalletByID(ctx, q, wallet.ID)
		if err != nil {
			return fmt.Errorf("create wallet: failed to re-fetch wallet %d: %w", wallet.ID, err)
		}
		created = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update renames the wallet and, when the requested balance differs from the
// stored one, books a balance correction for the difference. Both happen in
// one unit of work.
func (s *walletService) Update(ctx context.Context, userID, id int64, input UpdateWalletInput) (*domain.Wallet, error) {
	var name *string
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("update wallet %d: name cannot be empty: %w", id, util.ErrInvalidInput)
		}
		name = &trimmed
	}
	if input.Balance != nil && !util.HasMoneyScale(*input.Balance) {
		return nil, fmt.Errorf("update wallet %d: balance has more than %d decimal places: %w", id, util.MoneyScale, util.ErrInvalidInput)
	}
	if input.Balance != nil && !util.FitsMoney(*input.Balance) {
		return nil, fmt.Errorf("update wallet %d: balance must be less than %s: %w", id, util.MaxMoney, util.ErrInvalidInput)
	}

	err := s.txRunner.WithTx(ctx, "update wallet", func(q repository.DBExecutor) error {
		wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update wallet %d: %w", id, err)
		}
		if wallet.UserID != userID {
			return fmt.Errorf("update wallet %d: %w", id, util.ErrWalletNotFound)
		}

		if input.Balance != nil && input.Balance.IsNegative() {
			return fmt.Errorf("update wallet %d: %w", id, util.ErrNegativeBalance)
		}

		if name != nil {
			if err := s.walletRepo.UpdateWalletName(ctx, q, id, *name); err != nil {
				return fmt.Errorf("update wallet %d: %w", id, err)
			}
		}

		if input.Balance == nil || input.Balance.Equal(wallet.Balance) {
			return nil
		}
		diff := input.Balance.Sub(wallet.Balance)
		if err := s.bookCorrection(ctx, q, userID, id, diff); err != nil {
			return fmt.Errorf("update wallet %d: %w", id, err)
		}
		util.GetLogger().Info("wallet balance corrected",
			"wallet_id", id, "user_id", userID, "from", wallet.Balance.String(), "to", input.Balance.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FindOne(ctx, userID, id)
}

// Remove deletes a wallet owned by the user.
func (s *walletService) Remove(ctx context.Context, userID, id int64) error {
	if _, err := s.FindOne(ctx, userID, id); err != nil {
		return fmt.Errorf("remove wallet: %w", err)
	}
	if err := s.walletRepo.DeleteWallet(ctx, s.dbExecutor, id); err != nil {
		return fmt.Errorf("remove wallet %d: %w", id, err)
	}
	return nil
}

// bookCorrection records diff against the wallet as an income (diff > 0) or
// expense (diff < 0) in the user's Balance Correction category.
func (s *walletService) bookCorrection(ctx context.Context, q repository.DBExecutor, userID, walletID int64, diff decimal.Decimal) error {
	txType := domain.TransactionTypeIncome
	if diff.IsNegative() {
		txType = domain.TransactionTypeExpense
	}

	category, err := s.categoryRepo.FindCategoryByName(ctx, q, userID, txType, domain.BalanceCorrectionCategoryName)
	if err != nil {
		return fmt.Errorf("balance correction category (%s): %w", txType.Name(), err)
	}

	_, err = s.ledger.CreateWithExecutor(ctx, q, userID, CreateTransactionInput{
		Amount:     diff.Abs(),
		AdminFee:   decimal.Zero,
		Type:       txType,
		CategoryID: category.ID,
		WalletID:   walletID,
	})
	return err
}
