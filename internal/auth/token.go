package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/budget-service/internal/domain"
)

// TokenKind selects which secret and lifetime policy applies to a token.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Verification failure classes. Callers collapse all of them to a single
// unauthorized outcome; they exist for diagnostics only.
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenInvalid          = errors.New("token invalid")
)

// Claims describes the JWT payload. Refresh tokens omit the role.
type Claims struct {
	AccountID int64        `json:"uid"`
	Email     string       `json:"email"`
	Role      *domain.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies the two token kinds with independent
// secrets. A token signed for one kind never verifies as the other.
type TokenCodec struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
}

// NewTokenCodec builds a codec from the configured secrets and lifetimes.
func NewTokenCodec(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived token carrying id, email and role.
func (tc *TokenCodec) IssueAccess(account *domain.Account) (string, time.Time, error) {
	role := account.Role
	return tc.issue(account, &role, tc.accessSecret, tc.accessTTL)
}

// IssueRefresh signs a long-lived token carrying id and email only.
func (tc *TokenCodec) IssueRefresh(account *domain.Account) (string, time.Time, error) {
	return tc.issue(account, nil, tc.refreshSecret, tc.refreshTTL)
}

func (tc *TokenCodec) issue(account *domain.Account, role *domain.Role, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti: two tokens issued in the same second must
			// still rotate to distinct fingerprints.
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(account.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry against the secret for the given kind
// and returns the claims. Failures are classified into the error variables
// above.
func (tc *TokenCodec) Verify(tokenStr string, kind TokenKind) (*Claims, error) {
	secret := tc.accessSecret
	if kind == TokenKindRefresh {
		secret = tc.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, classifyTokenError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	default:
		return ErrTokenInvalid
	}
}
