package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/budget-service/internal/domain"
)

// AccountRepository defines persistence access for accounts. The refresh
// fingerprint column is the only session state in the system; all writes to
// it go through the three dedicated methods below.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// SetRefreshFingerprint unconditionally replaces the fingerprint.
	// Used on login, where a new session supersedes any prior one.
	SetRefreshFingerprint(ctx context.Context, id int64, fingerprint string) error
	// RotateRefreshFingerprint swaps expected for next in one statement.
	// It reports false when the stored fingerprint no longer matches
	// expected, so of two concurrent rotations of the same token at most
	// one can succeed.
	RotateRefreshFingerprint(ctx context.Context, id int64, expected, next string) (bool, error)
	ClearRefreshFingerprint(ctx context.Context, id int64) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `
        SELECT id, email, password_hash, role, refresh_fingerprint, created_at, updated_at
        FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, email, password_hash, role, refresh_fingerprint, created_at, updated_at
        FROM accounts WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.RefreshFingerprint,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) SetRefreshFingerprint(ctx context.Context, id int64, fingerprint string) error {
	const query = `
        UPDATE accounts SET refresh_fingerprint=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, fingerprint, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) RotateRefreshFingerprint(ctx context.Context, id int64, expected, next string) (bool, error) {
	const query = `
        UPDATE accounts SET refresh_fingerprint=$1, updated_at=NOW()
        WHERE id=$2 AND refresh_fingerprint=$3`

	cmd, err := r.pool.Exec(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *accountRepository) ClearRefreshFingerprint(ctx context.Context, id int64) error {
	const query = `
        UPDATE accounts SET refresh_fingerprint=NULL, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
