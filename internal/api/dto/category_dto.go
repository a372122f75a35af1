package dto

import "time"

// CategoryRequest payload for create/update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AccountID *int64    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
