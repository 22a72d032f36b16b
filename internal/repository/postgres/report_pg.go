// internal/repository/postgres/report_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
)

// ReportRepository implements repository.ReportRepository for PostgreSQL.
type ReportRepository struct{}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository() repository.ReportRepository {
	return &ReportRepository{}
}

// GetReportTotals sums income, expense (expense amounts plus transfer fees)
// and transfer admin fees for a user over [from, to).
func (r *ReportRepository) GetReportTotals(ctx context.Context, q repository.DBExecutor, userID int64, from, to time.Time) (*domain.ReportTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN transaction_type_id = $4 THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN transaction_type_id = $5 THEN amount
			                  WHEN transaction_type_id = $6 THEN admin_fee
			                  ELSE 0 END), 0) AS expense,
			COALESCE(SUM(CASE WHEN transaction_type_id = $6 THEN admin_fee ELSE 0 END), 0) AS admin_fee
		FROM transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`
	var totals domain.ReportTotals
	err := q.GetContext(ctx, &totals, query, userID, from, to,
		domain.TransactionTypeIncome.ID(), domain.TransactionTypeExpense.ID(), domain.TransactionTypeTransfer.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions for user %d: %w", userID, err)
	}
	return &totals, nil
}

// ListCategoryTotals groups a user's transactions of one type by category,
// largest total first.
func (r *ReportRepository) ListCategoryTotals(ctx context.Context, q repository.DBExecutor, userID int64, txType domain.TransactionType, from, to time.Time) ([]domain.CategoryTotal, error) {
	query := `
		SELECT COALESCE(c.id, 0) AS category_id,
		       COALESCE(c.name, 'Uncategorized') AS category_name,
		       c.icon_name AS icon_name,
		       SUM(t.amount) AS total
		FROM transactions t
		LEFT JOIN transaction_categories c ON c.id = t.transaction_category_id
		WHERE t.user_id = $1 AND t.created_at >= $2 AND t.created_at < $3 AND t.transaction_type_id = $4
		GROUP BY c.id, c.name, c.icon_name
		ORDER BY total DESC`
	totals := []domain.CategoryTotal{}
	if err := q.SelectContext(ctx, &totals, query, userID, from, to, txType.ID()); err != nil {
		return nil, fmt.Errorf("failed to group %s transactions for user %d: %w", txType, userID, err)
	}
	return totals, nil
}
