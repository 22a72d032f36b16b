// internal/repository/postgres/category_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"
)

// CategoryRepository implements repository.CategoryRepository for PostgreSQL.
type CategoryRepository struct{}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository() repository.CategoryRepository {
	return &CategoryRepository{}
}

type categoryRow struct {
	ID       int64          `db:"id"`
	UserID   int64          `db:"user_id"`
	TypeID   int16          `db:"transaction_type_id"`
	Name     string         `db:"name"`
	IconName sql.NullString `db:"icon_name"`
}

const categoryColumns = `id, user_id, transaction_type_id, name, icon_name`

func (row categoryRow) toDomain() (*domain.Category, error) {
	txType, err := domain.TransactionTypeFromID(row.TypeID)
	if err != nil {
		return nil, err
	}
	c := &domain.Category{ID: row.ID, UserID: row.UserID, Type: txType, Name: row.Name}
	if row.IconName.Valid {
		icon := row.IconName.String
		c.IconName = &icon
	}
	return c, nil
}

// CreateCategory inserts a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, q repository.DBExecutor, category *domain.Category) error {
	query := `INSERT INTO transaction_categories (user_id, transaction_type_id, name, icon_name)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, category.UserID, category.Type.ID(), category.Name, category.IconName).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category by its ID.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Category, error) {
	return r.getCategory(ctx, q, `SELECT `+categoryColumns+` FROM transaction_categories WHERE id = $1`, id)
}

// FindCategoryByName looks up a category by user, type and case-insensitive name.
func (r *CategoryRepository) FindCategoryByName(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM transaction_categories
              WHERE user_id = $1 AND transaction_type_id = $2 AND LOWER(name) = LOWER($3)
              ORDER BY id LIMIT 1`
	return r.getCategory(ctx, q, query, userID, txType.ID(), name)
}

func (r *CategoryRepository) getCategory(ctx context.Context, q repository.DBExecutor, query string, args ...interface{}) (*domain.Category, error) {
	var row categoryRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return row.toDomain()
}

// ListCategories returns a filtered page of categories and the total count.
func (r *CategoryRepository) ListCategories(ctx context.Context, q repository.DBExecutor, filter repository.CategoryFilter) ([]domain.Category, int64, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	if filter.Type != "" {
		args = append(args, filter.Type.ID())
		where = append(where, fmt.Sprintf("transaction_type_id = $%d", len(args)))
	}
	if filter.ExcludeName != "" {
		args = append(args, filter.ExcludeName)
		where = append(where, fmt.Sprintf("LOWER(name) <> LOWER($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM transaction_categories`+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories for user %d: %w", filter.UserID, err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	query := `SELECT ` + categoryColumns + ` FROM transaction_categories` + whereClause +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows := []categoryRow{}
	if err := q.SelectContext(ctx, &rows, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list categories for user %d: %w", filter.UserID, err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, *c)
	}
	return categories, total, nil
}

// UpdateCategory persists name, type and icon of a category.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, q repository.DBExecutor, category *domain.Category) error {
	query := `UPDATE transaction_categories SET name = $1, transaction_type_id = $2, icon_name = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, category.Name, category.Type.ID(), category.IconName, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	return requireRow(result, util.ErrCategoryNotFound)
}

// DeleteCategory removes a category.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transaction_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return requireRow(result, util.ErrCategoryNotFound)
}

// ListTransactionTypes returns the seeded transaction types.
func (r *CategoryRepository) ListTransactionTypes(ctx context.Context, q repository.DBExecutor) ([]domain.TransactionTypeRecord, error) {
	types := []domain.TransactionTypeRecord{}
	if err := q.SelectContext(ctx, &types, `SELECT id, name FROM transaction_types ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list transaction types: %w", err)
	}
	return types, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
