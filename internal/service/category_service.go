package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/repository"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

// CategoryService coordinates category CRUD.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create adds a category owned by the calling account.
func (s *CategoryService) Create(ctx context.Context, accountID int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	category := &domain.Category{
		Name:      name,
		AccountID: &accountID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// List returns every category.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// ListMine returns categories owned by the account.
func (s *CategoryService) ListMine(ctx context.Context, accountID int64) ([]domain.Category, error) {
	return s.categories.ListByAccount(ctx, accountID)
}

// Get returns one category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
		}
		return nil, err
	}
	return category, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
		}
		return nil, err
	}
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"id": id})
		}
		return err
	}
	return nil
}
