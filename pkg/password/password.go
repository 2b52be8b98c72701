package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(bytes), err
}

// CheckPasswordHash compares a candidate against the stored bcrypt hash.
// bcrypt's comparison is constant time.
func CheckPasswordHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateNewPassword enforces the rules for a replacement password.
func ValidateNewPassword(oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrTooShort
	}
	if strings.EqualFold(oldPassword, newPassword) {
		return ErrSameAsOld
	}
	return nil
}
