package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const passwordSpecials = "@$!%*?&"

// ErrWeakPassword is returned when a password fails the platform policy.
var ErrWeakPassword = errors.New("password must be 8-60 characters with an uppercase letter, a lowercase letter, a digit and one of @$!%*?&")

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares plain password with hashed password.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// ValidatePassword enforces the password policy: length 8-60, latin letters in
// both cases, a digit and a special character.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 60 {
		return ErrWeakPassword
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return ErrWeakPassword
		}
	}
	if !lower || !upper || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}
