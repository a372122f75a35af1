package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of a refresh token. Only the
// fingerprint is persisted, so a leaked account store does not expose
// usable refresh tokens. The digest is deterministic: rotation relies on an
// SQL equality compare-and-swap against the stored value.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
