package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomSuffix returns n random bytes hex encoded, e.g. for de-duplicating slugs.
func RandomSuffix(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
