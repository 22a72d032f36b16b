// internal/service/transaction_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"

	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// CreateTransactionInput carries the fields of a new transaction.
type CreateTransactionInput struct {
	Amount         decimal.Decimal
	AdminFee       decimal.Decimal
	Type           domain.TransactionType
	CategoryID     int64
	WalletID       int64
	TargetWalletID *int64
	CreatedAt      *time.Time
}

// UpdateTransactionInput is a partial update. Nil fields keep their current value.
type UpdateTransactionInput struct {
	Amount         *decimal.Decimal
	AdminFee       *decimal.Decimal
	Type           *domain.TransactionType
	CategoryID     *int64
	WalletID       *int64
	TargetWalletID *int64
}

// ListTransactionsOptions selects a page of transactions, optionally limited
// to one UTC calendar day.
type ListTransactionsOptions struct {
	Page  int
	Limit int
	Date  *time.Time
}

// TransactionService is the ledger engine. It is the only code path that
// changes wallet balances.
type TransactionService interface {
	Create(ctx context.Context, userID int64, input CreateTransactionInput) (*domain.Transaction, error)
	// CreateWithExecutor books a transaction inside a unit of work the caller
	// already holds. The caller commits or rolls back.
	CreateWithExecutor(ctx context.Context, q repository.DBExecutor, userID int64, input CreateTransactionInput) (*domain.Transaction, error)
	FindAll(ctx context.Context, userID int64, opts ListTransactionsOptions) (*domain.Page[domain.Transaction], error)
	FindOne(ctx context.Context, userID, id int64) (*domain.Transaction, error)
	Update(ctx context.Context, userID, id int64, input UpdateTransactionInput) (*domain.Transaction, error)
	Remove(ctx context.Context, userID, id int64) error
}

// transactionService implements the TransactionService interface.
type transactionService struct {
	txRunner        *TxRunner
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	categoryRepo    repository.CategoryRepository
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	txRunner *TxRunner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	categoryRepo repository.CategoryRepository,
) TransactionService {
	return &transactionService{
		txRunner:        txRunner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// Create books a transaction in its own unit of work.
func (s *transactionService) Create(ctx context.Context, userID int64, input CreateTransactionInput) (*domain.Transaction, error) {
	var created *domain.Transaction
	err := s.txRunner.WithTx(ctx, "create transaction", func(q repository.DBExecutor) error {
		tx, err := s.CreateWithExecutor(ctx, q, userID, input)
		if err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateWithExecutor books a transaction through q.
func (s *transactionService) CreateWithExecutor(ctx context.Context, q repository.DBExecutor, userID int64, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, q, userID, input.CategoryID); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	var targetID *int64
	if input.Type == domain.TransactionTypeTransfer {
		targetID = input.TargetWalletID
	}

	wallets, err := s.lockWallets(ctx, q, userID, walletIDs(input.WalletID, targetID)...)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	var createdAt time.Time
	if input.CreatedAt != nil {
		createdAt = *input.CreatedAt
	}
	tx := domain.NewTransaction(userID, input.Type, input.CategoryID, input.Amount, input.AdminFee, createdAt)
	if err := s.transactionRepo.CreateTransaction(ctx, q, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.applyTransaction(ctx, q, tx, wallets, input.WalletID, targetID); err != nil {
		return nil, fmt.Errorf("create transaction %d: %w", tx.ID, err)
	}

	util.GetLogger().Debug("transaction booked",
		"transaction_id", tx.ID, "user_id", userID, "type", tx.Type, "amount", tx.Amount.String())
	return tx, nil
}

// FindAll returns a newest-first page of the user's transactions.
func (s *transactionService) FindAll(ctx context.Context, userID int64, opts ListTransactionsOptions) (*domain.Page[domain.Transaction], error) {
	page := domain.PageRequest{Page: opts.Page, Limit: opts.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}

	filter := repository.TransactionFilter{
		UserID: userID,
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if opts.Date != nil {
		d := opts.Date.UTC()
		from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		filter.From = &from
		filter.To = &to
	}

	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &domain.Page[domain.Transaction]{
		Data:       transactions,
		Pagination: domain.NewPagination(total, page.Page, page.Limit),
	}, nil
}

// FindOne returns a single transaction owned by the user.
func (s *transactionService) FindOne(ctx context.Context, userID, id int64) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	if tx.UserID != userID {
		return nil, fmt.Errorf("get transaction %d: %w", id, util.ErrTransactionNotFound)
	}
	return tx, nil
}

// Update reverses the transaction's movements, applies the changed fields and
// books the movements again.
func (s *transactionService) Update(ctx context.Context, userID, id int64, input UpdateTransactionInput) (*domain.Transaction, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	var updated *domain.Transaction
	err := s.txRunner.WithTx(ctx, "update transaction", func(q repository.DBExecutor) error {
		tx, err := s.transactionRepo.GetTransactionByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		if tx.UserID != userID {
			return fmt.Errorf("update transaction %d: %w", id, util.ErrTransactionNotFound)
		}

		newType := tx.Type
		if input.Type != nil {
			newType = *input.Type
		}

		sourceID, ok := tx.SourceWalletID()
		if input.WalletID != nil {
			sourceID, ok = *input.WalletID, true
		}
		if !ok {
			return fmt.Errorf("update transaction %d: walletId is required: %w", id, util.ErrInvalidInput)
		}

		var targetID *int64
		if newType == domain.TransactionTypeTransfer {
			if input.TargetWalletID != nil {
				targetID = input.TargetWalletID
			} else if current, found := tx.TargetWalletID(); found {
				targetID = &current
			}
			if targetID != nil && *targetID == sourceID {
				return fmt.Errorf("update transaction %d: %w", id, util.ErrSameWalletTransfer)
			}
		}

		if input.CategoryID != nil {
			if err := s.checkCategory(ctx, q, userID, *input.CategoryID); err != nil {
				return fmt.Errorf("update transaction %d: %w", id, err)
			}
		}

		ids := walletIDs(sourceID, targetID)
		for _, m := range tx.Movements {
			ids = append(ids, m.WalletID)
		}
		wallets, err := s.lockWallets(ctx, q, userID, ids...)
		if err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}

		if err := s.reverseMovements(ctx, q, tx); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}

		tx.Type = newType
		if input.Amount != nil {
			tx.Amount = *input.Amount
		}
		if input.AdminFee != nil {
			tx.AdminFee = *input.AdminFee
		}
		if input.CategoryID != nil {
			categoryID := *input.CategoryID
			tx.CategoryID = &categoryID
		}
		tx.UpdatedAt = time.Now().UTC()
		if err := s.transactionRepo.UpdateTransaction(ctx, q, tx); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}

		tx.Movements = nil
		if err := s.applyTransaction(ctx, q, tx, wallets, sourceID, targetID); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}

		updated, err = s.transactionRepo.GetTransactionByID(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update transaction %d: failed to re-fetch: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove reverses the transaction's movements and deletes it.
func (s *transactionService) Remove(ctx context.Context, userID, id int64) error {
	return s.txRunner.WithTx(ctx, "remove transaction", func(q repository.DBExecutor) error {
		tx, err := s.transactionRepo.GetTransactionByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("remove transaction %d: %w", id, err)
		}
		if tx.UserID != userID {
			return fmt.Errorf("remove transaction %d: %w", id, util.ErrTransactionNotFound)
		}

		ids := make([]int64, 0, len(tx.Movements))
		for _, m := range tx.Movements {
			ids = append(ids, m.WalletID)
		}
		if _, err := s.lockWallets(ctx, q, userID, ids...); err != nil {
			return fmt.Errorf("remove transaction %d: %w", id, err)
		}

		if err := s.reverseMovements(ctx, q, tx); err != nil {
			return fmt.Errorf("remove transaction %d: %w", id, err)
		}
		if err := s.transactionRepo.DeleteTransaction(ctx, q, id); err != nil {
			return fmt.Errorf("remove transaction %d: %w", id, err)
		}
		return nil
	})
}

// applyTransaction books the source movement and, for transfers with a
// target, the incoming target movement. wallets must already be locked.
func (s *transactionService) applyTransaction(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction, wallets map[int64]*domain.Wallet, sourceID int64, targetID *int64) error {
	source := domain.Movement{
		TransactionID: tx.ID,
		WalletID:      sourceID,
		IsIncoming:    tx.IsIncome(),
		Amount:        tx.SourceAmount(),
	}
	if err := s.applyMovement(ctx, q, &source, wallets[sourceID]); err != nil {
		return err
	}
	tx.Movements = append(tx.Movements, source)

	if tx.IsTransfer() && targetID != nil {
		target := domain.Movement{
			TransactionID: tx.ID,
			WalletID:      *targetID,
			IsIncoming:    true,
			Amount:        tx.Amount,
		}
		if err := s.applyMovement(ctx, q, &target, wallets[*targetID]); err != nil {
			return err
		}
		tx.Movements = append(tx.Movements, target)
	}
	return nil
}

// applyMovement persists m and adds its signed amount to the wallet balance.
func (s *transactionService) applyMovement(ctx context.Context, q repository.DBExecutor, m *domain.Movement, wallet *domain.Wallet) error {
	if err := s.transactionRepo.CreateMovement(ctx, q, m); err != nil {
		return err
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, q, m.WalletID, m.SignedAmount()); err != nil {
		return fmt.Errorf("failed to update balance of wallet %d: %w", m.WalletID, err)
	}
	if wallet != nil {
		updated := *wallet
		updated.Balance = wallet.Balance.Add(m.SignedAmount())
		*wallet = updated
		m.Wallet = &updated
	}
	return nil
}

// reverseMovements undoes every movement of tx and deletes them.
func (s *transactionService) reverseMovements(ctx context.Context, q repository.DBExecutor, tx *domain.Transaction) error {
	for _, m := range tx.Movements {
		if err := s.walletRepo.UpdateWalletBalance(ctx, q, m.WalletID, m.SignedAmount().Neg()); err != nil {
			return fmt.Errorf("failed to reverse movement %d on wallet %d: %w", m.ID, m.WalletID, err)
		}
	}
	return s.transactionRepo.DeleteMovementsByTransactionID(ctx, q, tx.ID)
}

// lockWallets locks the given wallets in ascending id order and checks that
// each belongs to the user. Duplicate ids are locked once.
func (s *transactionService) lockWallets(ctx context.Context, q repository.DBExecutor, userID int64, ids ...int64) (map[int64]*domain.Wallet, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	wallets := make(map[int64]*domain.Wallet, len(sorted))
	for _, id := range sorted {
		if _, seen := wallets[id]; seen {
			continue
		}
		wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
		if err != nil {
			return nil, fmt.Errorf("wallet %d: %w", id, err)
		}
		if wallet.UserID != userID {
			return nil, fmt.Errorf("wallet %d: %w", id, util.ErrWalletNotFound)
		}
		wallets[id] = wallet
	}
	return wallets, nil
}

func (s *transactionService) checkCategory(ctx context.Context, q repository.DBExecutor, userID, categoryID int64) error {
	category, err := s.categoryRepo.GetCategoryByID(ctx, q, categoryID)
	if err != nil {
		return fmt.Errorf("category %d: %w", categoryID, err)
	}
	if category.UserID != userID {
		return fmt.Errorf("category %d: %w", categoryID, util.ErrCategoryNotFound)
	}
	return nil
}

func walletIDs(sourceID int64, targetID *int64) []int64 {
	if targetID == nil {
		return []int64{sourceID}
	}
	return []int64{sourceID, *targetID}
}

func validateCreateInput(input CreateTransactionInput) error {
	var problems []string
	if !input.Type.Valid() {
		problems = append(problems, "transactionTypeId must be 1, 2 or 3")
	}
	problems = append(problems, checkAmount("amount", input.Amount, true)...)
	problems = append(problems, checkAmount("adminFee", input.AdminFee, false)...)
	if input.CategoryID <= 0 {
		problems = append(problems, "transactionCategoryId is required")
	}
	if input.WalletID <= 0 {
		problems = append(problems, "walletId is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), util.ErrInvalidInput)
	}
	if input.Type == domain.TransactionTypeTransfer && input.TargetWalletID != nil && *input.TargetWalletID == input.WalletID {
		return util.ErrSameWalletTransfer
	}
	return nil
}

func validateUpdateInput(input UpdateTransactionInput) error {
	var problems []string
	if input.Type != nil && !input.Type.Valid() {
		problems = append(problems, "transactionTypeId must be 1, 2 or 3")
	}
	if input.Amount != nil {
		problems = append(problems, checkAmount("amount", *input.Amount, true)...)
	}
	if input.AdminFee != nil {
		problems = append(problems, checkAmount("adminFee", *input.AdminFee, false)...)
	}
	if input.CategoryID != nil && *input.CategoryID <= 0 {
		problems = append(problems, "transactionCategoryId must be positive")
	}
	if input.WalletID != nil && *input.WalletID <= 0 {
		problems = append(problems, "walletId must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), util.ErrInvalidInput)
	}
	return nil
}

// checkAmount validates a money field. Amounts must be positive when
// positive is set and non-negative otherwise, with at most two decimals and
// below util.MaxMoney.
func checkAmount(field string, v decimal.Decimal, positive bool) []string {
	var problems []string
	if positive && !v.IsPositive() {
		problems = append(problems, field+" must be greater than 0")
	}
	if !positive && v.IsNegative() {
		problems = append(problems, field+" cannot be negative")
	}
	if !util.HasMoneyScale(v) {
		problems = append(problems, fmt.Sprintf("%s has more than %d decimal places", field, util.MoneyScale))
	}
	if !util.FitsMoney(v) {
		problems = append(problems, fmt.Sprintf("%s must be less than %s", field, util.MaxMoney))
	}
	return problems
}
