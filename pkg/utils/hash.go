package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plain password using bcrypt. The hashpw command uses
// it to produce ADMIN_PASSWORD_HASH values.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// SecureCompare compares two strings in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
