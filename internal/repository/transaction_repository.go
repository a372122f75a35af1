package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/budget-service/internal/domain"
)

// TransactionRepository encapsulates transaction persistence.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository instantiates repository.
func NewTransactionRepository(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepository{pool: pool}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (account_id, category_id, type, amount, description, transaction_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		tx.AccountID,
		tx.CategoryID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.TransactionDate,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	const query = `
        UPDATE transactions SET category_id=$1, type=$2, amount=$3, description=$4,
            transaction_date=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		tx.CategoryID,
		tx.Type,
		tx.Amount,
		tx.Description,
		tx.TransactionDate,
		tx.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM transactions WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	const query = `
        SELECT id, account_id, category_id, type, amount, description, transaction_date, created_at, updated_at
        FROM transactions WHERE id=$1`

	var tx domain.Transaction
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.CategoryID,
		&tx.Type,
		&tx.Amount,
		&tx.Description,
		&tx.TransactionDate,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	const query = `
        SELECT id, account_id, category_id, type, amount, description, transaction_date, created_at, updated_at
        FROM transactions WHERE account_id=$1 ORDER BY transaction_date DESC, id`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&tx.CategoryID,
			&tx.Type,
			&tx.Amount,
			&tx.Description,
			&tx.TransactionDate,
			&tx.CreatedAt,
			&tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
