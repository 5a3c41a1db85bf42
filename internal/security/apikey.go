package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// APIKeyPrefix marks kinship API keys so they are recognisable in configs.
const APIKeyPrefix = "kin_"

// HashAPIKey returns the stored form of an API key.
func HashAPIKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// NewAPIKey generates a random API key.
func NewAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}

	return APIKeyPrefix + hex.EncodeToString(buf), nil
}
