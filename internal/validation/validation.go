// Package validation holds input validation rules shared by handlers.
package validation

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
	minUsernameLen = 3
	maxUsernameLen = 30
	maxEmailLen    = 254
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)

// ValidatePassword enforces length and character class requirements.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < minPasswordLen {
		return errors.New("password must be at least 12 characters")
	}
	if len(runes) > maxPasswordLen {
		return errors.New("password must be at most 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errors.New("password must contain upper and lower case letters, a digit, and a special character")
	}
	return nil
}

// ValidateUsername enforces length and allowed characters. Usernames start
// and end with an alphanumeric and may contain dashes and underscores in
// between.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen {
		return errors.New("username must be at least 3 characters")
	}
	if len(username) > maxUsernameLen {
		return errors.New("username must be at most 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may only contain letters, digits, dashes and underscores, and must start and end with a letter or digit")
	}
	return nil
}

// ValidateEmail checks the address parses and has a plausible domain.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return errors.New("email address too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if domain == "" || strings.HasSuffix(domain, ".") || !strings.Contains(domain, ".") {
		return errors.New("invalid email domain")
	}
	return nil
}
