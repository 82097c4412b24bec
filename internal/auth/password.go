// Package auth holds client-side account rules: session token handling and
// password checks made before credentials are sent.
package auth

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrWeakPassword     = errors.New("password is too weak: use at least 6 characters with letters and digits")
	ErrShortPassword    = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Password strength levels shown as bars on the registration form.
const (
	StrengthNone = iota
	StrengthWeak
	StrengthMedium
	StrengthStrong
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

const specialChars = "!@#$%^&*"

// PasswordStrength rates a password from StrengthNone to StrengthStrong.
//
//   - empty: none
//   - shorter than 6: weak
//   - 8 or more with letters, digits and one of !@#$%^&*: strong
//   - anything else: medium
func PasswordStrength(password string) int {
	if password == "" {
		return StrengthNone
	}
	if len([]rune(password)) < MinPasswordLength {
		return StrengthWeak
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	special := strings.ContainsAny(password, specialChars)

	if len([]rune(password)) >= 8 && letter && digit && special {
		return StrengthStrong
	}
	return StrengthMedium
}

// ValidateNewPassword checks a password chosen at registration.
func ValidateNewPassword(password string) error {
	if PasswordStrength(password) < StrengthMedium {
		return ErrWeakPassword
	}
	return nil
}

// ValidateReset checks a password reset form.
func ValidateReset(newPassword, confirm string) error {
	if len([]rune(newPassword)) < MinPasswordLength {
		return ErrShortPassword
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
