package domain

import "time"

// Category groups transactions and budgets. AccountID is nil for shared
// categories visible to every account.
type Category struct {
	ID        int64
	Name      string
	AccountID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
