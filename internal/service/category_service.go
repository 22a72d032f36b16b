// internal/service/category_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/util"
)

// CreateCategoryInput carries the fields of a new category.
type CreateCategoryInput struct {
	Name     string
	Type     domain.TransactionType
	IconName *string
}

// UpdateCategoryInput is a partial update. Nil fields keep their current value.
type UpdateCategoryInput struct {
	Name     *string
	Type     *domain.TransactionType
	IconName *string
}

// ListCategoriesOptions filters and pages the category list.
type ListCategoriesOptions struct {
	Page   int
	Limit  int
	Type   domain.TransactionType
	Search string
}

// CategoryService manages user-defined transaction categories.
type CategoryService interface {
	Create(ctx context.Context, userID int64, input CreateCategoryInput) (*domain.Category, error)
	FindAll(ctx context.Context, userID int64, opts ListCategoriesOptions) (*domain.Page[domain.Category], error)
	FindOne(ctx context.Context, userID, id int64) (*domain.Category, error)
	Update(ctx context.Context, userID, id int64, input UpdateCategoryInput) (*domain.Category, error)
	Remove(ctx context.Context, userID, id int64) error
	ListTransactionTypes(ctx context.Context) ([]domain.TransactionTypeRecord, error)
}

type categoryService struct {
	dbExecutor   repository.DBExecutor
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService.
func NewCategoryService(dbExecutor repository.DBExecutor, categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{
		dbExecutor:   dbExecutor,
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) Create(ctx context.Context, userID int64, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("create category: name is required: %w", util.ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("create category: transactionTypeId must be 1, 2 or 3: %w", util.ErrInvalidInput)
	}
	if err := s.ensureUnique(ctx, userID, input.Type, name, 0); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	category := &domain.Category{
		UserID:   userID,
		Type:     input.Type,
		Name:     name,
		IconName: input.IconName,
	}
	if err := s.categoryRepo.CreateCategory(ctx, s.dbExecutor, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// FindAll lists the user's categories newest first. Balance Correction
// categories are hidden.
func (s *categoryService) FindAll(ctx context.Context, userID int64, opts ListCategoriesOptions) (*domain.Page[domain.Category], error) {
	page := domain.PageRequest{Page: opts.Page, Limit: opts.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	if opts.Type != "" && !opts.Type.Valid() {
		return nil, fmt.Errorf("list categories: unknown transaction type: %w", util.ErrInvalidInput)
	}

	categories, total, err := s.categoryRepo.ListCategories(ctx, s.dbExecutor, repository.CategoryFilter{
		UserID:      userID,
		Type:        opts.Type,
		Search:      strings.TrimSpace(opts.Search),
		ExcludeName: domain.BalanceCorrectionCategoryName,
		Limit:       page.Limit,
		Offset:      page.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return &domain.Page[domain.Category]{
		Data:       categories,
		Pagination: domain.NewPagination(total, page.Page, page.Limit),
	}, nil
}

func (s *categoryService) FindOne(ctx context.Context, userID, id int64) (*domain.Category, error) {
	category, err := s.categoryRepo.GetCategoryByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	if category.UserID != userID {
		return nil, fmt.Errorf("get category %d: %w", id, util.ErrCategoryNotFound)
	}
	return category, nil
}

// Update changes name, type or icon. Balance Correction categories are
// read-only.
func (s *categoryService) Update(ctx context.Context, userID, id int64, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.FindOne(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if category.IsBalanceCorrection() {
		return nil, fmt.Errorf("update category %d: balance correction categories cannot be changed: %w", id, util.ErrInvalidInput)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("update category %d: name cannot be empty: %w", id, util.ErrInvalidInput)
		}
		category.Name = name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, fmt.Errorf("update category %d: transactionTypeId must be 1, 2 or 3: %w", id, util.ErrInvalidInput)
		}
		category.Type = *input.Type
	}
	if input.IconName != nil {
		category.IconName = input.IconName
	}

	if input.Name != nil || input.Type != nil {
		if err := s.ensureUnique(ctx, userID, category.Type, category.Name, id); err != nil {
			return nil, fmt.Errorf("update category %d: %w", id, err)
		}
	}

	if err := s.categoryRepo.UpdateCategory(ctx, s.dbExecutor, category); err != nil {
		return nil, fmt.Errorf("update category %d: %w", id, err)
	}
	return category, nil
}

// Remove deletes a category. Transactions that used it keep existing with no
// category.
func (s *categoryService) Remove(ctx context.Context, userID, id int64) error {
	category, err := s.FindOne(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	if category.IsBalanceCorrection() {
		return fmt.Errorf("remove category %d: balance correction categories cannot be deleted: %w", id, util.ErrInvalidInput)
	}
	if err := s.categoryRepo.DeleteCategory(ctx, s.dbExecutor, id); err != nil {
		return fmt.Errorf("remove category %d: %w", id, err)
	}
	return nil
}

func (s *categoryService) ListTransactionTypes(ctx context.Context) ([]domain.TransactionTypeRecord, error) {
	types, err := s.categoryRepo.ListTransactionTypes(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list transaction types: %w", err)
	}
	return types, nil
}

// ensureUnique fails with ErrDuplicateEntry when another category of the user
// with the same type has the same name, ignoring case. selfID is skipped.
func (s *categoryService) ensureUnique(ctx context.Context, userID int64, txType domain.TransactionType, name string, selfID int64) error {
	existing, err := s.categoryRepo.FindCategoryByName(ctx, s.dbExecutor, userID, txType, name)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return fmt.Errorf("category %q already exists for %s: %w", name, txType.Name(), util.ErrDuplicateEntry)
}
