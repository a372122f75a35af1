package dto

import "github.com/spec-kit/budget-service/internal/domain"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload for token rotation.
type RefreshRequest struct {
	AccountID    int64  `json:"accountId"`
	RefreshToken string `json:"refreshToken"`
}

// AccountResponse is the public projection of an account.
type AccountResponse struct {
	ID    int64       `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// TokenPairResponse carries a freshly issued pair.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
