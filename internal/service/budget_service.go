package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/repository"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

// BudgetInput describes a budget create/update payload.
type BudgetInput struct {
	CategoryID int64
	Amount     float64
	StartDate  time.Time
	EndDate    time.Time
}

// BudgetService coordinates budget CRUD with ownership checks.
type BudgetService struct {
	budgets    repository.BudgetRepository
	categories repository.CategoryRepository
}

// NewBudgetService constructs the service.
func NewBudgetService(budgets repository.BudgetRepository, categories repository.CategoryRepository) *BudgetService {
	return &BudgetService{budgets: budgets, categories: categories}
}

// Create adds a budget for the account after validating the date range and
// the referenced category.
func (s *BudgetService) Create(ctx context.Context, accountID int64, input BudgetInput) (*domain.Budget, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	budget := &domain.Budget{
		AccountID:  accountID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// List returns the account's budgets.
func (s *BudgetService) List(ctx context.Context, accountID int64) ([]domain.Budget, error) {
	return s.budgets.ListByAccount(ctx, accountID)
}

// ListActive returns budgets whose date range covers the current time.
func (s *BudgetService) ListActive(ctx context.Context, accountID int64) ([]domain.Budget, error) {
	return s.budgets.ListActive(ctx, accountID)
}

// ListByCategory returns the account's budgets for one category.
func (s *BudgetService) ListByCategory(ctx context.Context, accountID, categoryID int64) ([]domain.Budget, error) {
	return s.budgets.ListByCategory(ctx, accountID, categoryID)
}

// Get returns one budget by id.
func (s *BudgetService) Get(ctx context.Context, id int64) (*domain.Budget, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("budget", map[string]any{"id": id})
		}
		return nil, err
	}
	return budget, nil
}

// Update replaces a budget owned by the account. A budget owned by someone
// else is indistinguishable from a missing one.
func (s *BudgetService) Update(ctx context.Context, id, accountID int64, input BudgetInput) (*domain.Budget, error) {
	budget, err := s.getOwned(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	budget.CategoryID = input.CategoryID
	budget.Amount = input.Amount
	budget.StartDate = input.StartDate
	budget.EndDate = input.EndDate
	if err := s.budgets.Update(ctx, budget); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("budget", map[string]any{"id": id})
		}
		return nil, err
	}
	return budget, nil
}

// Delete removes a budget owned by the account.
func (s *BudgetService) Delete(ctx context.Context, id, accountID int64) error {
	if _, err := s.getOwned(ctx, id, accountID); err != nil {
		return err
	}
	if err := s.budgets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("budget", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

func (s *BudgetService) getOwned(ctx context.Context, id, accountID int64) (*domain.Budget, error) {
	budget, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.AccountID != accountID {
		return nil, apperrors.NewNotFound("budget", map[string]any{"id": id})
	}
	return budget, nil
}

func (s *BudgetService) validate(ctx context.Context, input BudgetInput) error {
	if !input.EndDate.After(input.StartDate) {
		return apperrors.NewValidationError("end date must be after start date", nil)
	}
	if input.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", nil)
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"id": input.CategoryID})
		}
		return err
	}
	return nil
}
