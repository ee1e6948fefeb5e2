// internal/utils/crypto.go
package utils

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash means the configured hash is not a bcrypt hash at all,
// as opposed to a hash that simply does not match.
var ErrMalformedHash = errors.New("malformed bcrypt hash")

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPasswordHash(password, hash string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return false, ErrMalformedHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}

func CheckPlainPassword(password, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}
