package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/budget-service/internal/auth"
	"github.com/spec-kit/budget-service/internal/config"
	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/events"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

// fakeAccountRepository is an in-memory AccountRepository with the same
// uniqueness and compare-and-swap behavior as the Postgres implementation.
type fakeAccountRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*domain.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{nextID: 1, accounts: make(map[int64]*domain.Account)}
}

func (f *fakeAccountRepository) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	account.ID = f.nextID
	f.nextID++
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepository) SetRefreshFingerprint(_ context.Context, id int64, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.RefreshFingerprint = &fingerprint
	return nil
}

func (f *fakeAccountRepository) RotateRefreshFingerprint(_ context.Context, id int64, expected, next string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok || account.RefreshFingerprint == nil || *account.RefreshFingerprint != expected {
		return false, nil
	}
	account.RefreshFingerprint = &next
	return true, nil
}

func (f *fakeAccountRepository) ClearRefreshFingerprint(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.RefreshFingerprint = nil
	return nil
}

func (f *fakeAccountRepository) fingerprint(id int64) *string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		return account.RefreshFingerprint
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:     "test-access-secret",
			AccessTokenTTLMinutes: 15,
			RefreshTokenSecret:    "test-refresh-secret",
			RefreshTokenTTLDays:   7,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newTestAuthService(repo *fakeAccountRepository, dispatcher events.Dispatcher) *AuthService {
	return NewAuthService(testConfig(), AuthDependencies{
		AccountRepo: repo,
		Dispatcher:  dispatcher,
		Logger:      zap.NewNop(),
	})
}

func registerAndLogin(t *testing.T, svc *AuthService) (*domain.Account, *TokenPair) {
	t.Helper()
	account, err := svc.Register(context.Background(), "alice@example.com", "pw123", "")
	require.NoError(t, err)
	pair, err := svc.Login(context.Background(), "alice@example.com", "pw123")
	require.NoError(t, err)
	return account, pair
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, err := svc.Register(context.Background(), "alice@example.com", "pw123", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, domain.RoleUser, account.Role)
	assert.NotEqual(t, "pw123", account.PasswordHash)
	assert.True(t, auth.VerifyPassword(account.PasswordHash, "pw123"))
	assert.Nil(t, account.RefreshFingerprint)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepository()
	svc := newTestAuthService(repo, nil)

	first, err := svc.Register(context.Background(), "alice@example.com", "pw123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice@example.com", "other-password", "")
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	// First account untouched.
	stored, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "pw123"))
}

func TestRegister_Roles(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)

	admin, err := svc.Register(context.Background(), "admin@example.com", "pw123", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.Register(context.Background(), "bob@example.com", "pw123", "SUPERUSER")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestLogin_NoEmailExistenceOracle(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	_, err := svc.Register(context.Background(), "alice@example.com", "pw123", "")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "pw123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, apperrors.ToDomainError(wrongPassword), apperrors.ToDomainError(unknownEmail))
}

func TestLogin_StartsSession(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepository()
	svc := newTestAuthService(repo, nil)
	account, pair := registerAndLogin(t, svc)

	claims, err := svc.TokenCodec().Verify(pair.AccessToken, auth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, account.Email, claims.Email)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleUser, *claims.Role)

	stored := repo.fingerprint(account.ID)
	require.NotNil(t, stored)
	assert.Equal(t, auth.Fingerprint(pair.RefreshToken), *stored)
}

func TestLogin_SupersedesPriorSession(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, first := registerAndLogin(t, svc)

	second, err := svc.Login(context.Background(), "alice@example.com", "pw123")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), account.ID, first.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	// The reuse attempt revoked everything; log in again to confirm a new
	// session works after the stale-token incident.
	third, err := svc.Login(context.Background(), "alice@example.com", "pw123")
	require.NoError(t, err)
	_, err = svc.RefreshTokens(context.Background(), account.ID, third.RefreshToken)
	require.NoError(t, err)
	_ = second
}

func TestRefreshTokens_RotationAndReuseDetection(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepository()
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	dispatcher.Subscribe(events.EventRefreshReuseDetected, func(_ context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	})

	svc := newTestAuthService(repo, dispatcher)
	account, pair1 := registerAndLogin(t, svc)

	// Rotation: a new pair is issued and the old refresh token dies.
	pair2, err := svc.RefreshTokens(context.Background(), account.ID, pair1.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair1.RefreshToken, pair2.RefreshToken)

	stored := repo.fingerprint(account.ID)
	require.NotNil(t, stored)
	assert.Equal(t, auth.Fingerprint(pair2.RefreshToken), *stored)

	// Reusing the rotated-out token is unauthorized and kills the session.
	_, err = svc.RefreshTokens(context.Background(), account.ID, pair1.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	assert.Nil(t, repo.fingerprint(account.ID))
	assert.Equal(t, []events.EventType{events.EventRefreshReuseDetected}, seen)

	// The legitimate successor is dead too: reuse revokes the lineage.
	_, err = svc.RefreshTokens(context.Background(), account.ID, pair2.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshTokens_AfterLogout(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, pair := registerAndLogin(t, svc)

	require.NoError(t, svc.Logout(context.Background(), account.ID))

	_, err := svc.RefreshTokens(context.Background(), account.ID, pair.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, pair := registerAndLogin(t, svc)

	_, err := svc.RefreshTokens(context.Background(), account.ID, pair.AccessToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestRefreshTokens_SubjectMismatch(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepository()
	svc := newTestAuthService(repo, nil)
	alice, alicePair := registerAndLogin(t, svc)

	_, err := svc.Register(context.Background(), "bob@example.com", "pw456", "")
	require.NoError(t, err)
	bobPair, err := svc.Login(context.Background(), "bob@example.com", "pw456")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), alice.ID, bobPair.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	// Alice's session is untouched by someone else's token.
	stored := repo.fingerprint(alice.ID)
	require.NotNil(t, stored)
	assert.Equal(t, auth.Fingerprint(alicePair.RefreshToken), *stored)
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, _ := registerAndLogin(t, svc)

	require.NoError(t, svc.Logout(context.Background(), account.ID))
	require.NoError(t, svc.Logout(context.Background(), account.ID))
	require.NoError(t, svc.Logout(context.Background(), 9999))
}

func TestValidateAccount(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(newFakeAccountRepository(), nil)
	account, err := svc.Register(context.Background(), "alice@example.com", "pw123", "")
	require.NoError(t, err)

	found, err := svc.ValidateAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, found.Email)

	_, err = svc.ValidateAccount(context.Background(), 9999)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}
