package dto

import (
	"time"

	"github.com/spec-kit/budget-service/internal/domain"
)

// TransactionRequest payload for create/update.
type TransactionRequest struct {
	CategoryID      int64                  `json:"categoryId"`
	Type            domain.TransactionType `json:"type"`
	Amount          float64                `json:"amount"`
	Description     *string                `json:"description"`
	TransactionDate time.Time              `json:"transactionDate"`
}

// TransactionResponse response.
type TransactionResponse struct {
	ID              int64                  `json:"id"`
	AccountID       int64                  `json:"account_id"`
	CategoryID      int64                  `json:"category_id"`
	Type            domain.TransactionType `json:"type"`
	Amount          float64                `json:"amount"`
	Description     *string                `json:"description"`
	TransactionDate time.Time              `json:"transaction_date"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}
