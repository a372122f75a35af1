package domain

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// ValidTransactionType reports whether the value belongs to the enumeration.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction records a single income or expense entry.
type Transaction struct {
	ID              int64
	AccountID       int64
	CategoryID      int64
	Type            TransactionType
	Amount          float64
	Description     *string
	TransactionDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
