package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for password hashing, tuned for tens of
// milliseconds per call on commodity hardware.
const BcryptCost = 12

var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

// HashPassword derives a salted one-way digest from a plaintext password.
// The salt is generated per call and embedded in the digest.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored digest. The
// comparison happens in constant time inside bcrypt.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
