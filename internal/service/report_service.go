// internal/service/report_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReportService builds monthly income/expense reports.
type ReportService interface {
	MonthlyReport(ctx context.Context, userID int64, year, month int) (*domain.MonthlyReport, error)
}

type reportService struct {
	dbExecutor repository.DBExecutor
	reportRepo repository.ReportRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(dbExecutor repository.DBExecutor, reportRepo repository.ReportRepository) ReportService {
	return &reportService{dbExecutor: dbExecutor, reportRepo: reportRepo}
}

// MonthlyReport summarises the user's transactions of one UTC calendar month.
// Transfer admin fees count as expense.
func (s *reportService) MonthlyReport(ctx context.Context, userID int64, year, month int) (*domain.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("monthly report: month must be 1-12: %w", util.ErrInvalidInput)
	}
	if year < 1970 || year > 9999 {
		return nil, fmt.Errorf("monthly report: year out of range: %w", util.ErrInvalidInput)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	totals, err := s.reportRepo.GetReportTotals(ctx, s.dbExecutor, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	expenseCategories, err := s.reportRepo.ListCategoryTotals(ctx, s.dbExecutor, userID, domain.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	incomeCategories, err := s.reportRepo.ListCategoryTotals(ctx, s.dbExecutor, userID, domain.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	for i := range expenseCategories {
		expenseCategories[i].Percentage = percentOf(expenseCategories[i].Total, totals.Expense)
	}
	for i := range incomeCategories {
		incomeCategories[i].Percentage = percentOf(incomeCategories[i].Total, totals.Income)
	}

	return &domain.MonthlyReport{
		Period: domain.ReportPeriod{
			Year:      year,
			Month:     month,
			StartDate: from,
			EndDate:   to.Add(-time.Millisecond),
		},
		Summary: domain.ReportSummary{
			Income:  totals.Income,
			Expense: totals.Expense,
			Balance: totals.Income.Sub(totals.Expense),
		},
		Breakdown: domain.ReportBreakdown{
			Expense: domain.ExpenseBreakdown{
				Categories: expenseCategories,
				AdminFee: domain.ShareTotal{
					Total:      totals.AdminFee,
					Percentage: percentOf(totals.AdminFee, totals.Expense),
				},
			},
			Income: domain.IncomeBreakdown{Categories: incomeCategories},
		},
	}, nil
}

// percentOf is part/whole*100 rounded to two places, or 0 when whole is 0.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 4).Round(2)
}
