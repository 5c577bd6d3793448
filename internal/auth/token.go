// Package auth guards diagnostic endpoints with a bcrypt-hashed bearer token.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// bcrypt ignores input beyond 72 bytes.
const maxTokenBytes = 72

// HashToken hashes a debug token for DEBUG_MODEL_TOKEN_HASH. Tokens are pasted
// into env files and shells, so surrounding whitespace is never part of the
// token; HashToken and VerifyToken trim the same way.
func HashToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", fmt.Errorf("token is required")
	}
	if len(trimmed) > maxTokenBytes {
		return "", fmt.Errorf("token must be at most %d bytes", maxTokenBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken compares a presented token with a stored hash. Blank input never
// verifies.
func VerifyToken(token, hash string) bool {
	trimmedToken := strings.TrimSpace(token)
	trimmedHash := strings.TrimSpace(hash)
	if trimmedToken == "" || trimmedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(trimmedToken)) == nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ValidHash reports whether raw parses as a bcrypt hash.
func ValidHash(raw string) bool {
	_, err := bcrypt.Cost([]byte(strings.TrimSpace(raw)))
	return err == nil
}
