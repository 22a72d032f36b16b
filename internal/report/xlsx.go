// internal/report/xlsx.go
package report

import (
	"fmt"
	"io"

	"fintrack/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	expenseSheet = "Expense"
	incomeSheet  = "Income"
)

// ContentType is the MIME type of the workbook written by WriteMonthlyXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name of a monthly report workbook.
func Filename(r *domain.MonthlyReport) string {
	return fmt.Sprintf("report_%04d_%02d.xlsx", r.Period.Year, r.Period.Month)
}

// WriteMonthlyXLSX renders r as a workbook with a summary sheet and one
// sheet per breakdown side.
func WriteMonthlyXLSX(w io.Writer, r *domain.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Period", fmt.Sprintf("%04d-%02d", r.Period.Year, r.Period.Month)},
		{"Start", r.Period.StartDate.Format("2006-01-02")},
		{"End", r.Period.EndDate.Format("2006-01-02")},
		{},
		{"Income", r.Summary.Income.InexactFloat64()},
		{"Expense", r.Summary.Expense.InexactFloat64()},
		{"Balance", r.Summary.Balance.InexactFloat64()},
		{"Admin fees", r.Breakdown.Expense.AdminFee.Total.InexactFloat64()},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 14); err != nil {
		return err
	}

	expenseRows := categoryRows(r.Breakdown.Expense.Categories)
	expenseRows = append(expenseRows, []interface{}{
		"Admin fees",
		r.Breakdown.Expense.AdminFee.Total.InexactFloat64(),
		r.Breakdown.Expense.AdminFee.Percentage.InexactFloat64(),
	})
	if err := writeCategorySheet(f, expenseSheet, expenseRows); err != nil {
		return err
	}
	if err := writeCategorySheet(f, incomeSheet, categoryRows(r.Breakdown.Income.Categories)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func categoryRows(totals []domain.CategoryTotal) [][]interface{} {
	rows := make([][]interface{}, 0, len(totals))
	for _, c := range totals {
		rows = append(rows, []interface{}{c.CategoryName, c.Total.InexactFloat64(), c.Percentage.InexactFloat64()})
	}
	return rows
}

func writeCategorySheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := [][]interface{}{{"Category", "Total", "Percentage"}}
	if err := writeRows(f, sheet, append(header, rows...)); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
