package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/budget-service/internal/domain"
)

// BudgetRepository encapsulates budget persistence.
type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	Update(ctx context.Context, budget *domain.Budget) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Budget, error)
	ListByCategory(ctx context.Context, accountID, categoryID int64) ([]domain.Budget, error)
	ListActive(ctx context.Context, accountID int64) ([]domain.Budget, error)
}

type budgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository instantiates repository.
func NewBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &budgetRepository{pool: pool}
}

func (r *budgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	const query = `
        INSERT INTO budgets (account_id, category_id, amount, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		budget.AccountID,
		budget.CategoryID,
		budget.Amount,
		budget.StartDate,
		budget.EndDate,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
}

func (r *budgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	const query = `
        UPDATE budgets SET category_id=$1, amount=$2, start_date=$3, end_date=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		budget.CategoryID,
		budget.Amount,
		budget.StartDate,
		budget.EndDate,
		budget.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *budgetRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM budgets WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *budgetRepository) GetByID(ctx context.Context, id int64) (*domain.Budget, error) {
	const query = `
        SELECT id, account_id, category_id, amount, start_date, end_date, created_at, updated_at
        FROM budgets WHERE id=$1`

	var budget domain.Budget
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&budget.ID,
		&budget.AccountID,
		&budget.CategoryID,
		&budget.Amount,
		&budget.StartDate,
		&budget.EndDate,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Budget, error) {
	const query = `
        SELECT id, account_id, category_id, amount, start_date, end_date, created_at, updated_at
        FROM budgets WHERE account_id=$1 ORDER BY id`
	return r.fetchMany(ctx, query, accountID)
}

func (r *budgetRepository) ListByCategory(ctx context.Context, accountID, categoryID int64) ([]domain.Budget, error) {
	const query = `
        SELECT id, account_id, category_id, amount, start_date, end_date, created_at, updated_at
        FROM budgets WHERE account_id=$1 AND category_id=$2 ORDER BY id`
	return r.fetchMany(ctx, query, accountID, categoryID)
}

func (r *budgetRepository) ListActive(ctx context.Context, accountID int64) ([]domain.Budget, error) {
	const query = `
        SELECT id, account_id, category_id, amount, start_date, end_date, created_at, updated_at
        FROM budgets
        WHERE account_id=$1 AND start_date<=NOW() AND end_date>=NOW()
        ORDER BY id`
	return r.fetchMany(ctx, query, accountID)
}

func (r *budgetRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Budget, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := make([]domain.Budget, 0)
	for rows.Next() {
		var budget domain.Budget
		if err := rows.Scan(
			&budget.ID,
			&budget.AccountID,
			&budget.CategoryID,
			&budget.Amount,
			&budget.StartDate,
			&budget.EndDate,
			&budget.CreatedAt,
			&budget.UpdatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}
