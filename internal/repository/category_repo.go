// internal/repository/category_repo.go
package repository

import (
	"context"

	"fintrack/internal/domain"
)

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	UserID int64
	// Type filters by transaction type when non-empty.
	Type domain.TransactionType
	// Search is a case-insensitive substring match on the name.
	Search string
	// ExcludeName hides categories with this exact name (case-insensitive).
	ExcludeName string
	Limit       int
	Offset      int
}

// CategoryRepository defines the interface for category and transaction type
// data operations.
type CategoryRepository interface {
	// CreateCategory inserts a category; a name already used by the same
	// user and type yields util.ErrDuplicateEntry.
	CreateCategory(ctx context.Context, q DBExecutor, category *domain.Category) error
	// GetCategoryByID retrieves a category by its ID.
	GetCategoryByID(ctx context.Context, q DBExecutor, id int64) (*domain.Category, error)
	// FindCategoryByName looks a category up by user, type and name, case-insensitively.
	FindCategoryByName(ctx context.Context, q DBExecutor, userID int64, txType domain.TransactionType, name string) (*domain.Category, error)
	// ListCategories returns a page of categories (newest id first) plus the total count.
	ListCategories(ctx context.Context, q DBExecutor, filter CategoryFilter) ([]domain.Category, int64, error)
	// UpdateCategory persists name, type and icon.
	UpdateCategory(ctx context.Context, q DBExecutor, category *domain.Category) error
	// DeleteCategory removes a category; its transactions keep a NULL category.
	DeleteCategory(ctx context.Context, q DBExecutor, id int64) error
	// ListTransactionTypes returns the seeded transaction types.
	ListTransactionTypes(ctx context.Context, q DBExecutor) ([]domain.TransactionTypeRecord, error)
}
