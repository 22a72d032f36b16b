// internal/repository/report_repo.go
package repository

import (
	"context"
	"time"

	"fintrack/internal/domain"
)

// ReportRepository runs the read-only aggregation queries behind reports.
// All ranges are [from, to).
type ReportRepository interface {
	GetReportTotals(ctx context.Context, q DBExecutor, userID int64, from, to time.Time) (*domain.ReportTotals, error)
	ListCategoryTotals(ctx context.Context, q DBExecutor, userID int64, txType domain.TransactionType, from, to time.Time) ([]domain.CategoryTotal, error)
}
