// utils/validator.go - Account input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)
)

// ValidateEmail reports whether email looks like a deliverable address.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateUsername accepts 3-50 characters: letters, digits, dot,
// underscore, hyphen. Matches the account naming convention of the
// university identity export (e.g. "pak.budi", "mhs_adi").
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidatePassword checks the minimum password policy. The second
// return value carries a user-facing reason when the check fails.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput trims surrounding whitespace and strips null bytes.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
