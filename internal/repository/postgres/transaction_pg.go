// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// transactionRow is a transactions row joined with its category.
type transactionRow struct {
	ID             int64           `db:"id"`
	UserID         int64           `db:"user_id"`
	TypeID         int16           `db:"transaction_type_id"`
	CategoryID     sql.NullInt64   `db:"transaction_category_id"`
	Amount         decimal.Decimal `db:"amount"`
	AdminFee       decimal.Decimal `db:"admin_fee"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	CategoryName   sql.NullString  `db:"category_name"`
	CategoryIcon   sql.NullString  `db:"category_icon_name"`
	CategoryTypeID sql.NullInt16   `db:"category_type_id"`
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.transaction_type_id, t.transaction_category_id,
	       t.amount, t.admin_fee, t.created_at, t.updated_at,
	       c.name AS category_name, c.icon_name AS category_icon_name,
	       c.transaction_type_id AS category_type_id
	FROM transactions t
	LEFT JOIN transaction_categories c ON c.id = t.transaction_category_id`

func (row transactionRow) toDomain() (domain.Transaction, error) {
	txType, err := domain.TransactionTypeFromID(row.TypeID)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx := domain.Transaction{
		ID:        row.ID,
		UserID:    row.UserID,
		Type:      txType,
		Amount:    row.Amount,
		AdminFee:  row.AdminFee,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.CategoryID.Valid {
		id := row.CategoryID.Int64
		tx.CategoryID = &id
		category := &domain.Category{ID: id, UserID: row.UserID, Name: row.CategoryName.String}
		if row.CategoryIcon.Valid {
			icon := row.CategoryIcon.String
			category.IconName = &icon
		}
		if row.CategoryTypeID.Valid {
			if catType, err := domain.TransactionTypeFromID(row.CategoryTypeID.Int16); err == nil {
				category.Type = catType
			}
		}
		tx.Category = category
	}
	return tx, nil
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, transaction_type_id, transaction_category_id, amount, admin_fee, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.Type.ID(),
		transaction.CategoryID,
		transaction.Amount,
		transaction.AdminFee,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction persists the mutable fields of a transaction.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `UPDATE transactions
              SET transaction_type_id = $1, transaction_category_id = $2, amount = $3, admin_fee = $4, updated_at = $5
              WHERE id = $6`
	result, err := q.ExecContext(ctx, query,
		transaction.Type.ID(),
		transaction.CategoryID,
		transaction.Amount,
		transaction.AdminFee,
		transaction.UpdatedAt,
		transaction.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", transaction.ID, err)
	}
	return requireRow(result, util.ErrTransactionNotFound)
}

// DeleteTransaction removes a transaction row.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return requireRow(result, util.ErrTransactionNotFound)
}

// GetTransactionByID loads a transaction with its category and movements.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	return r.getTransaction(ctx, q, transactionSelect+` WHERE t.id = $1`, id)
}

// GetTransactionByIDForUpdate loads a transaction and locks its row.
func (r *TransactionRepository) GetTransactionByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	return r.getTransaction(ctx, q, transactionSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id)
}

func (r *TransactionRepository) getTransaction(ctx context.Context, q repository.DBExecutor, query string, id int64) (*domain.Transaction, error) {
	var row transactionRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID %d: %w", id, err)
	}
	tx, err := row.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to map transaction %d: %w", id, err)
	}

	txs := []domain.Transaction{tx}
	if err := r.attachMovements(ctx, q, txs); err != nil {
		return nil, err
	}
	return &txs[0], nil
}

// ListTransactions retrieves a newest-first page of a user's transactions.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) ListTransactions(ctx context.Context, q repository.DBExecutor, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	where := []string{"t.user_id = $1"}
	args := []interface{}{filter.UserID}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("t.created_at < $%d", len(args)))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM transactions t`+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for user %d: %w", filter.UserID, err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	query := transactionSelect + whereClause +
		fmt.Sprintf(" ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows := []transactionRow{}
	if err := q.SelectContext(ctx, &rows, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %d: %w", filter.UserID, err)
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to map transaction %d: %w", row.ID, err)
		}
		transactions = append(transactions, tx)
	}
	if err := r.attachMovements(ctx, q, transactions); err != nil {
		return nil, 0, err
	}
	return transactions, totalCount, nil
}

// movementRow is a transaction_wallets row joined with its wallet.
type movementRow struct {
	domain.Movement
	WalletUserID    int64           `db:"wallet_user_id"`
	WalletName      string          `db:"wallet_name"`
	WalletBalance   decimal.Decimal `db:"wallet_balance"`
	WalletCreatedAt time.Time       `db:"wallet_created_at"`
	WalletUpdatedAt time.Time       `db:"wallet_updated_at"`
}

func (r *TransactionRepository) attachMovements(ctx context.Context, q repository.DBExecutor, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	ids := make([]int64, len(transactions))
	index := make(map[int64]int, len(transactions))
	for i, tx := range transactions {
		ids[i] = tx.ID
		index[tx.ID] = i
	}

	query := `
		SELECT tw.id, tw.transaction_id, tw.wallet_id, tw.is_incoming, tw.amount,
		       w.user_id AS wallet_user_id, w.name AS wallet_name, w.balance AS wallet_balance,
		       w.created_at AS wallet_created_at, w.updated_at AS wallet_updated_at
		FROM transaction_wallets tw
		JOIN wallets w ON w.id = tw.wallet_id
		WHERE tw.transaction_id = ANY($1)
		ORDER BY tw.id`
	rows := []movementRow{}
	if err := q.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to fetch movements: %w", err)
	}

	for _, row := range rows {
		m := row.Movement
		m.Wallet = &domain.Wallet{
			ID:        row.WalletID,
			UserID:    row.WalletUserID,
			Name:      row.WalletName,
			Balance:   row.WalletBalance,
			CreatedAt: row.WalletCreatedAt,
			UpdatedAt: row.WalletUpdatedAt,
		}
		i := index[m.TransactionID]
		transactions[i].Movements = append(transactions[i].Movements, m)
	}
	return nil
}

// CreateMovement inserts one movement row.
func (r *TransactionRepository) CreateMovement(ctx context.Context, q repository.DBExecutor, movement *domain.Movement) error {
	query := `INSERT INTO transaction_wallets (transaction_id, wallet_id, is_incoming, amount)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, movement.TransactionID, movement.WalletID, movement.IsIncoming, movement.Amount).Scan(&movement.ID)
	if err != nil {
		return fmt.Errorf("failed to create movement for transaction %d: %w", movement.TransactionID, err)
	}
	return nil
}

// DeleteMovementsByTransactionID removes every movement of a transaction.
func (r *TransactionRepository) DeleteMovementsByTransactionID(ctx context.Context, q repository.DBExecutor, transactionID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM transaction_wallets WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("failed to delete movements of transaction %d: %w", transactionID, err)
	}
	return nil
}
