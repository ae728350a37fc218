// internal/member/password.go
package member

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword produces a bcrypt hash of the password. The salt is
// embedded in the hash, so a single column stores everything needed for
// later verification.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// verifyPassword compares a plaintext password against a stored hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
