package util

import (
	"golang.org/x/crypto/bcrypt"
)

// Staff credentials are long-lived, so hashing leans toward the
// expensive end of the bcrypt range.
const bcryptCost = 12

// HashPassword derives the bcrypt hash stored for a staff account.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether a login attempt matches the stored hash.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
