package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const (
	APIKeyPrefix = "sp_"

	apiKeyBytes       = 24
	apiKeyVisibleSize = len(APIKeyPrefix) + 6
)

// GenerateRandomKey returns length random bytes, URL-safe base64 encoded.
func GenerateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewAPIKey returns a fresh secret, its SHA-256 and the short prefix that is safe to display.
func NewAPIKey() (key, hash, prefix string, err error) {
	random, err := GenerateRandomKey(apiKeyBytes)
	if err != nil {
		return "", "", "", err
	}
	key = APIKeyPrefix + random
	return key, HashAPIKey(key), key[:apiKeyVisibleSize], nil
}

func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

func LooksLikeAPIKey(key string) bool {
	return strings.HasPrefix(key, APIKeyPrefix) && len(key) > apiKeyVisibleSize
}
