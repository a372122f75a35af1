package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThrough(t *testing.T) {
	t.Parallel()

	original := NewConflict("email already registered", nil)
	converted := ToDomainError(original)
	require.NotNil(t, converted)
	assert.Equal(t, "CONFLICT", converted.Code)
	assert.Equal(t, http.StatusConflict, converted.HTTPStatus)
}

func TestToDomainError_Wrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading account: %w", NewUnauthorized("invalid credentials"))
	converted := ToDomainError(wrapped)
	require.NotNil(t, converted)
	assert.Equal(t, "UNAUTHORIZED", converted.Code)
}

func TestToDomainError_NoRows(t *testing.T) {
	t.Parallel()

	converted := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, converted)
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainError_Unknown(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	converted := ToDomainError(cause)
	require.NotNil(t, converted)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	// The cause stays attached for logs but the message stays generic.
	assert.ErrorIs(t, converted, cause)
	assert.Equal(t, "internal server error", converted.Message)
}

func TestToDomainError_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ToDomainError(nil))
}

func TestNewNotFound_Message(t *testing.T) {
	t.Parallel()

	err := NewNotFound("budget", map[string]any{"id": int64(12)})
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "budget not found", domainErr.Message)
	assert.Equal(t, int64(12), domainErr.Details["id"])
}
