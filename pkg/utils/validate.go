package utils

import (
	"errors"
	"regexp"
	"strings"
)

const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks that the email has a plausible shape. Matching
// against stored emails is exact and case-sensitive.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("Email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("Invalid email address")
	}
	return nil
}

// ValidatePassword enforces the minimum password length for signup and
// password reset.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("Password must be at least 6 characters")
	}
	return nil
}

// ValidateName checks the profile name supplied at signup.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("Name is required")
	}
	return nil
}
