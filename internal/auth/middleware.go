package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/repository"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. It carries only the public
// projection of the account: the password hash and refresh fingerprint never
// leave the repository layer.
type Principal struct {
	AccountID int64
	Email     string
	Role      domain.Role
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenCodec
	accounts repository.AccountRepository
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenCodec, accounts repository.AccountRepository, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, logger: logger}
}

// Handle enforces authentication for protected routes. Verification
// failures are logged with their class but surface uniformly as 401.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Verify(parts[1], TokenKindAccess)
	if err != nil {
		m.logger.Debug("access token rejected", zap.Error(err))
		return apperrors.NewUnauthorized("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
