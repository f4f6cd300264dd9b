package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const cartTokenBytes = 32

// NewCartToken mints an opaque token identifying an anonymous cart. The
// token is carried in a cookie, so it must be unguessable.
func NewCartToken() (string, error) {
	bytes := make([]byte, cartTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating cart token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
