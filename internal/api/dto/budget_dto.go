package dto

import "time"

// BudgetRequest payload for create/update.
type BudgetRequest struct {
	CategoryID int64     `json:"categoryId"`
	Amount     float64   `json:"amount"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
}

// BudgetResponse response.
type BudgetResponse struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"account_id"`
	CategoryID int64     `json:"category_id"`
	Amount     float64   `json:"amount"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
