package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateAPIKey creates a secure random API key for the privileged
// allow-list. Format: igk_<base64-url-safe-encoded-32-bytes>, roughly 47
// characters long.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(bytes)

	return "igk_" + encoded, nil
}
