package domain

import "regexp"

const maxEmailLen = 30

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	letterPattern  = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*]`)
)

// ValidEmail reports whether email has a plausible shape and is at most
// 30 characters.
func ValidEmail(email string) bool {
	if len(email) > maxEmailLen {
		return false
	}
	return emailPattern.MatchString(email)
}

// ValidPassword reports whether password is 8-20 characters and contains
// at least one letter, one digit and one special character. The password
// is validated at login but never stored.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 20 {
		return false
	}
	return letterPattern.MatchString(password) &&
		digitPattern.MatchString(password) &&
		specialPattern.MatchString(password)
}
