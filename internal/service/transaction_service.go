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

// TransactionInput describes a transaction create/update payload.
type TransactionInput struct {
	CategoryID      int64
	Type            domain.TransactionType
	Amount          float64
	Description     *string
	TransactionDate time.Time
}

// TransactionService coordinates transaction CRUD with ownership checks.
type TransactionService struct {
	transactions repository.TransactionRepository
	categories   repository.CategoryRepository
}

// NewTransactionService constructs the service.
func NewTransactionService(transactions repository.TransactionRepository, categories repository.CategoryRepository) *TransactionService {
	return &TransactionService{transactions: transactions, categories: categories}
}

// Create records a transaction for the account.
func (s *TransactionService) Create(ctx context.Context, accountID int64, input TransactionInput) (*domain.Transaction, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		AccountID:       accountID,
		CategoryID:      input.CategoryID,
		Type:            input.Type,
		Amount:          input.Amount,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// List returns the account's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return s.transactions.ListByAccount(ctx, accountID)
}

// Get returns one transaction by id.
func (s *TransactionService) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", map[string]any{"id": id})
		}
		return nil, err
	}
	return tx, nil
}

// Update replaces a transaction owned by the account.
func (s *TransactionService) Update(ctx context.Context, id, accountID int64, input TransactionInput) (*domain.Transaction, error) {
	tx, err := s.getOwned(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	tx.CategoryID = input.CategoryID
	tx.Type = input.Type
	tx.Amount = input.Amount
	tx.Description = input.Description
	tx.TransactionDate = input.TransactionDate
	if err := s.transactions.Update(ctx, tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", map[string]any{"id": id})
		}
		return nil, err
	}
	return tx, nil
}

// Delete removes a transaction owned by the account.
func (s *TransactionService) Delete(ctx context.Context, id, accountID int64) error {
	if _, err := s.getOwned(ctx, id, accountID); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("transaction", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

func (s *TransactionService) getOwned(ctx context.Context, id, accountID int64) (*domain.Transaction, error) {
	tx, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != accountID {
		return nil, apperrors.NewNotFound("transaction", map[string]any{"id": id})
	}
	return tx, nil
}

func (s *TransactionService) validate(ctx context.Context, input TransactionInput) error {
	if !domain.ValidTransactionType(input.Type) {
		return apperrors.NewValidationError("unknown transaction type", map[string]any{"type": string(input.Type)})
	}
	if input.Amount <= 0 {
		return apperrors.NewValidationError("amount must be positive", nil)
	}
	if input.TransactionDate.IsZero() {
		return apperrors.NewValidationError("transaction date required", nil)
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("category", map[string]any{"id": input.CategoryID})
		}
		return err
	}
	return nil
}
