package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	assert.True(t, VerifyPassword(hash, "pw123"))
	assert.False(t, VerifyPassword(hash, "pw124"))
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("same-password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "same-password"))
	assert.True(t, VerifyPassword(second, "same-password"))
}

func TestVerifyPassword_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "pw123"))
	assert.False(t, VerifyPassword("", "pw123"))
}
