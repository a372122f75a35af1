package domain

import "time"

// Budget caps spending for a category over a date range.
type Budget struct {
	ID         int64
	AccountID  int64
	CategoryID int64
	Amount     float64
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
