package auth

import (
	"errors"
)

var (
	ErrPasswordMismatch = errors.New("New password and confirm password do not match")
	ErrPasswordTooShort = errors.New("New password must be at least 6 characters long")
)

const minPasswordLength = 6

// CheckNewPassword applies the console's rules to a password change before it
// is sent to the API. The mismatch check runs first.
func CheckNewPassword(newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len([]rune(newPassword)) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
