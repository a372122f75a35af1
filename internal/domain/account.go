package domain

import "time"

// Role is the closed set of authorization roles an account can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ValidRole reports whether the value belongs to the role enumeration.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the domain model for a registered identity. RefreshFingerprint
// holds the digest of the currently valid refresh token; nil means the
// account has no active session.
type Account struct {
	ID                 int64
	Email              string
	PasswordHash       string
	Role               Role
	RefreshFingerprint *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
