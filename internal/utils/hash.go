package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashToken returns the hex sha256 of a bearer token. Only the hash is ever
// persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeStatus lower-cases and trims a status value read from a request.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
