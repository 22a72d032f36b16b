// internal/domain/report.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReport is the income/expense summary of one calendar month.
type MonthlyReport struct {
	Period    ReportPeriod    `json:"period"`
	Summary   ReportSummary   `json:"summary"`
	Breakdown ReportBreakdown `json:"breakdown"`
}

type ReportPeriod struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type ReportSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type ReportBreakdown struct {
	Expense ExpenseBreakdown `json:"expense"`
	Income  IncomeBreakdown  `json:"income"`
}

type ExpenseBreakdown struct {
	Categories []CategoryTotal `json:"categories"`
	AdminFee   ShareTotal      `json:"adminFee"`
}

type IncomeBreakdown struct {
	Categories []CategoryTotal `json:"categories"`
}

// CategoryTotal is one row of a per-category breakdown.
type CategoryTotal struct {
	CategoryID   int64           `db:"category_id" json:"categoryId"`
	CategoryName string          `db:"category_name" json:"categoryName"`
	IconName     *string         `db:"icon_name" json:"iconName"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Percentage   decimal.Decimal `db:"-" json:"percentage"`
}

type ShareTotal struct {
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ReportTotals are the raw sums a report is built from.
type ReportTotals struct {
	Income   decimal.Decimal `db:"income"`
	Expense  decimal.Decimal `db:"expense"`
	AdminFee decimal.Decimal `db:"admin_fee"`
}
