package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/budget-service/internal/domain"
)

type fakeBudgetRepository struct {
	nextID  int64
	budgets map[int64]*domain.Budget
}

func newFakeBudgetRepository() *fakeBudgetRepository {
	return &fakeBudgetRepository{nextID: 1, budgets: make(map[int64]*domain.Budget)}
}

func (f *fakeBudgetRepository) Create(_ context.Context, budget *domain.Budget) error {
	budget.ID = f.nextID
	f.nextID++
	stored := *budget
	f.budgets[budget.ID] = &stored
	return nil
}

func (f *fakeBudgetRepository) Update(_ context.Context, budget *domain.Budget) error {
	if _, ok := f.budgets[budget.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *budget
	f.budgets[budget.ID] = &stored
	return nil
}

func (f *fakeBudgetRepository) Delete(_ context.Context, id int64) error {
	if _, ok := f.budgets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.budgets, id)
	return nil
}

func (f *fakeBudgetRepository) GetByID(_ context.Context, id int64) (*domain.Budget, error) {
	budget, ok := f.budgets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *budget
	return &copied, nil
}

func (f *fakeBudgetRepository) ListByAccount(_ context.Context, accountID int64) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, budget := range f.budgets {
		if budget.AccountID == accountID {
			out = append(out, *budget)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepository) ListByCategory(_ context.Context, accountID, categoryID int64) ([]domain.Budget, error) {
	var out []domain.Budget
	for _, budget := range f.budgets {
		if budget.AccountID == accountID && budget.CategoryID == categoryID {
			out = append(out, *budget)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepository) ListActive(_ context.Context, accountID int64) ([]domain.Budget, error) {
	now := time.Now()
	var out []domain.Budget
	for _, budget := range f.budgets {
		if budget.AccountID == accountID && !budget.StartDate.After(now) && !budget.EndDate.Before(now) {
			out = append(out, *budget)
		}
	}
	return out, nil
}

type fakeCategoryRepository struct {
	categories map[int64]*domain.Category
}

func (f *fakeCategoryRepository) Create(_ context.Context, category *domain.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepository) Update(_ context.Context, category *domain.Category) error {
	f.categories[category.ID] = category
	return nil
}

func (f *fakeCategoryRepository) Delete(_ context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return category, nil
}

func (f *fakeCategoryRepository) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, category := range f.categories {
		out = append(out, *category)
	}
	return out, nil
}

func (f *fakeCategoryRepository) ListByAccount(_ context.Context, _ int64) ([]domain.Category, error) {
	return f.List(context.Background())
}

func newTestBudgetService() (*BudgetService, *fakeBudgetRepository) {
	budgets := newFakeBudgetRepository()
	categories := &fakeCategoryRepository{categories: map[int64]*domain.Category{
		1: {ID: 1, Name: "Groceries"},
	}}
	return NewBudgetService(budgets, categories), budgets
}

func validBudgetInput() BudgetInput {
	return BudgetInput{
		CategoryID: 1,
		Amount:     500,
		StartDate:  time.Now().Add(-24 * time.Hour),
		EndDate:    time.Now().Add(24 * time.Hour),
	}
}

func TestBudgetCreate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBudgetService()
	budget, err := svc.Create(context.Background(), 7, validBudgetInput())
	require.NoError(t, err)
	assert.NotZero(t, budget.ID)
	assert.Equal(t, int64(7), budget.AccountID)
	assert.Equal(t, float64(500), budget.Amount)
}

func TestBudgetCreate_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBudgetService()

	inverted := validBudgetInput()
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	_, err := svc.Create(context.Background(), 7, inverted)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	free := validBudgetInput()
	free.Amount = 0
	_, err = svc.Create(context.Background(), 7, free)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	orphan := validBudgetInput()
	orphan.CategoryID = 42
	_, err = svc.Create(context.Background(), 7, orphan)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestBudgetOwnership(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBudgetService()
	budget, err := svc.Create(context.Background(), 7, validBudgetInput())
	require.NoError(t, err)

	// A foreign budget looks exactly like a missing one.
	_, err = svc.Update(context.Background(), budget.ID, 8, validBudgetInput())
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	err = svc.Delete(context.Background(), budget.ID, 8)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	// The owner can still touch it.
	updated := validBudgetInput()
	updated.Amount = 750
	got, err := svc.Update(context.Background(), budget.ID, 7, updated)
	require.NoError(t, err)
	assert.Equal(t, float64(750), got.Amount)
	require.NoError(t, svc.Delete(context.Background(), budget.ID, 7))
}

func TestBudgetListActive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestBudgetService()

	current := validBudgetInput()
	_, err := svc.Create(context.Background(), 7, current)
	require.NoError(t, err)

	expired := validBudgetInput()
	expired.StartDate = time.Now().Add(-48 * time.Hour)
	expired.EndDate = time.Now().Add(-24 * time.Hour)
	_, err = svc.Create(context.Background(), 7, expired)
	require.NoError(t, err)

	active, err := svc.ListActive(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
