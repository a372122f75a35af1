package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	fp := Fingerprint("some-refresh-token")
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint("some-refresh-token"))
	assert.NotEqual(t, fp, Fingerprint("another-refresh-token"))
	assert.NotContains(t, fp, "some-refresh-token")
}
