package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/budget-service/internal/domain"
)

func testAccount() *domain.Account {
	return &domain.Account{
		ID:    1,
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func newTestCodec() *TokenCodec {
	return NewTokenCodec("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, expiresAt, err := codec.IssueAccess(testAccount())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := codec.Verify(token, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleUser, *claims.Role)
}

func TestIssueAndVerifyRefresh(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, _, err := codec.IssueRefresh(testAccount())
	require.NoError(t, err)

	claims, err := codec.Verify(token, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.AccountID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Nil(t, claims.Role)
}

func TestVerify_KindsDoNotCross(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	access, _, err := codec.IssueAccess(testAccount())
	require.NoError(t, err)
	refresh, _, err := codec.IssueRefresh(testAccount())
	require.NoError(t, err)

	_, err = codec.Verify(access, TokenKindRefresh)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	_, err = codec.Verify(refresh, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewTokenCodec("access-secret", time.Nanosecond, "refresh-secret", time.Nanosecond)
	token, _, err := codec.IssueAccess(testAccount())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = codec.Verify(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	_, err := codec.Verify("not.a.jwt", TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	other := NewTokenCodec("other-access-secret", 15*time.Minute, "other-refresh-secret", 7*24*time.Hour)

	token, _, err := other.IssueAccess(testAccount())
	require.NoError(t, err)

	_, err = codec.Verify(token, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestIssueRefresh_TokensAreUnique(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	first, _, err := codec.IssueRefresh(testAccount())
	require.NoError(t, err)
	second, _, err := codec.IssueRefresh(testAccount())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
