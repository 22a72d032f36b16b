// internal/domain/category.go
package domain

import "strings"

// BalanceCorrectionCategoryName names the seeded categories used for
// synthetic transactions created by direct wallet balance edits.
const BalanceCorrectionCategoryName = "Balance Correction"

// Category is a user-scoped label for transactions of one type.
type Category struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"userId"`
	Type     TransactionType `json:"transactionType"`
	Name     string          `json:"name"`
	IconName *string         `json:"iconName"`
}

// IsBalanceCorrection reports whether c is one of the seeded correction categories.
func (c *Category) IsBalanceCorrection() bool {
	return strings.EqualFold(c.Name, BalanceCorrectionCategoryName)
}
