package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/budget-service/internal/auth"
	"github.com/spec-kit/budget-service/internal/config"
	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/events"
	"github.com/spec-kit/budget-service/internal/repository"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

const uniqueViolationCode = "23505"

// TokenPair bundles a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService owns the session lifecycle: registration, login, refresh
// rotation with reuse detection, and logout. Session state is exactly one
// nullable fingerprint per account, so at most one refresh lineage is valid
// at a time.
type AuthService struct {
	accounts   repository.AccountRepository
	codec      *auth.TokenCodec
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts: deps.AccountRepo,
		codec: auth.NewTokenCodec(
			cfg.Auth.AccessTokenSecret,
			cfg.Auth.AccessTokenTTL(),
			cfg.Auth.RefreshTokenSecret,
			cfg.Auth.RefreshTokenTTL(),
		),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account without starting a session. An empty role
// defaults to USER; a value outside the enumeration is rejected. Duplicate
// emails yield Conflict whether caught by the pre-check or by the unique
// index during a concurrent registration.
func (s *AuthService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.Account, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}

	s.publishEvent(ctx, events.EventAccountRegistered, account.ID, events.AccountRegisteredPayload{
		Email: account.Email,
		Role:  string(account.Role),
	})
	return account, nil
}

// Login authenticates by email and password and starts a session. An
// unknown email and a wrong password return the same error value so the
// endpoint cannot be used to probe which emails are registered. A new login
// unconditionally supersedes any earlier session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.VerifyPassword(account.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetRefreshFingerprint(ctx, account.ID, auth.Fingerprint(pair.RefreshToken)); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventSessionStarted, account.ID, events.SessionStartedPayload{Email: account.Email})
	return pair, nil
}

// RefreshTokens rotates the session's token pair. The presented token must
// verify as a refresh token and its fingerprint must match the stored one.
// A cryptographically valid token whose fingerprint does not match is
// treated as reuse of a rotated-out token: the whole lineage is revoked
// before the caller gets the uniform unauthorized answer.
func (s *AuthService) RefreshTokens(ctx context.Context, accountID int64, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		s.logger.Debug("refresh token rejected", zap.Int64("account_id", accountID), zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if claims.AccountID != accountID {
		s.logger.Warn("refresh token subject mismatch", zap.Int64("account_id", accountID), zap.Int64("token_subject", claims.AccountID))
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if account.RefreshFingerprint == nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	presented := auth.Fingerprint(refreshToken)
	if presented != *account.RefreshFingerprint {
		return nil, s.revokeOnReuse(ctx, account)
	}

	pair, err := s.issuePair(account)
	if err != nil {
		return nil, err
	}

	rotated, err := s.accounts.RotateRefreshFingerprint(ctx, account.ID, presented, auth.Fingerprint(pair.RefreshToken))
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent call rotated first; this token is now stale.
		return nil, s.revokeOnReuse(ctx, account)
	}
	return pair, nil
}

// Logout clears the stored fingerprint. Logging out an account with no
// active session is not an error.
func (s *AuthService) Logout(ctx context.Context, accountID int64) error {
	if err := s.accounts.ClearRefreshFingerprint(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	s.publishEvent(ctx, events.EventSessionRevoked, accountID, events.SessionRevokedPayload{Reason: "logout"})
	return nil
}

// ValidateAccount resolves an account id for downstream authorization.
// Read-only; never touches session state.
func (s *AuthService) ValidateAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"id": accountID})
		}
		return nil, err
	}
	return account, nil
}

// TokenCodec exposes the underlying codec for middleware usage.
func (s *AuthService) TokenCodec() *auth.TokenCodec {
	return s.codec
}

func (s *AuthService) issuePair(account *domain.Account) (*TokenPair, error) {
	accessToken, accessExp, err := s.codec.IssueAccess(account)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.codec.IssueRefresh(account)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// revokeOnReuse clears the fingerprint so every outstanding refresh token
// of the account is dead, then returns the uniform unauthorized error.
func (s *AuthService) revokeOnReuse(ctx context.Context, account *domain.Account) error {
	s.logger.Warn("stale refresh token presented; revoking session", zap.Int64("account_id", account.ID))
	if err := s.accounts.ClearRefreshFingerprint(ctx, account.ID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error("failed to clear refresh fingerprint", zap.Int64("account_id", account.ID), zap.Error(err))
	}
	s.publishEvent(ctx, events.EventRefreshReuseDetected, account.ID, events.RefreshReuseDetectedPayload{Email: account.Email})
	s.publishEvent(ctx, events.EventSessionRevoked, account.ID, events.SessionRevokedPayload{Reason: "refresh_reuse"})
	return apperrors.NewUnauthorized("invalid refresh token")
}

func (s *AuthService) publishEvent(ctx context.Context, eventType events.EventType, accountID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: accountID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
