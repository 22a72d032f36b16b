// internal/seed/seed.go
package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"fintrack/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Category is one default category template.
type Category struct {
	Name     string `yaml:"name"`
	IconName string `yaml:"icon"`
	Type     domain.TransactionType
}

type categoryFile struct {
	Income   []Category `yaml:"income"`
	Expense  []Category `yaml:"expense"`
	Transfer []Category `yaml:"transfer"`
}

// DefaultCategories returns the categories every new account starts with.
func DefaultCategories() ([]Category, error) {
	return ParseCategories(defaultCategoriesYAML)
}

// ParseCategories decodes a category seed document. Income and expense must
// each contain a Balance Correction entry.
func ParseCategories(data []byte) ([]Category, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse category seed: %w", err)
	}

	var out []Category
	groups := []struct {
		txType     domain.TransactionType
		categories []Category
	}{
		{domain.TransactionTypeIncome, file.Income},
		{domain.TransactionTypeExpense, file.Expense},
		{domain.TransactionTypeTransfer, file.Transfer},
	}
	for _, g := range groups {
		seen := make(map[string]bool, len(g.categories))
		for _, c := range g.categories {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				return nil, fmt.Errorf("parse category seed: empty %s category name", g.txType.Name())
			}
			key := strings.ToLower(name)
			if seen[key] {
				return nil, fmt.Errorf("parse category seed: duplicate %s category %q", g.txType.Name(), name)
			}
			seen[key] = true
			out = append(out, Category{Name: name, IconName: c.IconName, Type: g.txType})
		}
	}

	for _, required := range []domain.TransactionType{domain.TransactionTypeIncome, domain.TransactionTypeExpense} {
		if !hasCorrection(out, required) {
			return nil, fmt.Errorf("parse category seed: missing %s %q category", required.Name(), domain.BalanceCorrectionCategoryName)
		}
	}
	return out, nil
}

// ToDomain builds a Category row for the user.
func (c Category) ToDomain(userID int64) *domain.Category {
	category := &domain.Category{UserID: userID, Type: c.Type, Name: c.Name}
	if c.IconName != "" {
		icon := c.IconName
		category.IconName = &icon
	}
	return category
}

func hasCorrection(categories []Category, txType domain.TransactionType) bool {
	for _, c := range categories {
		if c.Type == txType && strings.EqualFold(c.Name, domain.BalanceCorrectionCategoryName) {
			return true
		}
	}
	return false
}
