package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetCode returns a short recovery code, e.g. "a3f9c1", suitable for
// sending by email.
func NewResetCode() (string, error) {
	buf := make([]byte, 3)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
