// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"fintrack/internal/domain"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	UserID int64
	Limit  int
	Offset int
	// From (inclusive) and To (exclusive) bound created_at when set.
	From *time.Time
	To   *time.Time
}

// TransactionRepository defines the interface for transaction and movement
// data operations.
type TransactionRepository interface {
	// CreateTransaction inserts the transaction row and sets its ID.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// UpdateTransaction persists type, category, amount, admin fee and updated_at.
	UpdateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// DeleteTransaction removes the transaction row.
	DeleteTransaction(ctx context.Context, q DBExecutor, id int64) error
	// GetTransactionByID loads a transaction with its category and movements
	// (each with its wallet).
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// GetTransactionByIDForUpdate is GetTransactionByID that also locks the
	// transaction row. q must be a transaction.
	GetTransactionByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// ListTransactions returns a newest-first page plus the total count.
	ListTransactions(ctx context.Context, q DBExecutor, filter TransactionFilter) ([]domain.Transaction, int64, error)

	// CreateMovement inserts one transaction-wallet movement and sets its ID.
	CreateMovement(ctx context.Context, q DBExecutor, movement *domain.Movement) error
	// DeleteMovementsByTransactionID removes all movements of a transaction.
	DeleteMovementsByTransactionID(ctx context.Context, q DBExecutor, transactionID int64) error
}
