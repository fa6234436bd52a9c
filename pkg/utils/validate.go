package utils

import "regexp"

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9+\-]{9,15}$`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

func IsValidEmail(s string) bool { return emailRe.MatchString(s) }

func IsValidPhoneNumber(s string) bool { return phoneRe.MatchString(s) }

// IsStrongPassword 至少 8 位，含大小写字母和数字
func IsStrongPassword(s string) bool {
	return len(s) >= 8 && upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}
