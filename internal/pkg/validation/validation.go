package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Usernames: letters, digits, dot, underscore, hyphen.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._\-]{3,50}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsStrongPassword requires at least 8 characters with an uppercase letter,
// a lowercase letter and a digit.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasUpper, hasLower, hasDigit := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidWalletAddress accepts 10-255 characters with no whitespace, after trimming.
func IsValidWalletAddress(addr string) bool {
	s := strings.TrimSpace(addr)
	if len(s) < 10 || len(s) > 255 {
		return false
	}
	return !strings.ContainsFunc(s, unicode.IsSpace)
}
