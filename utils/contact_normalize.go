package utils

import (
	"strings"
	"unicode"
)

// NormalizeEmail lower-cases and trims an address. Returns "" when there is no '@'.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneLast10 returns the last 10 digits, which tolerates country-code prefixes.
// Numbers shorter than 7 digits are not considered matchable.
func PhoneLast10(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) < 7 {
		return ""
	}
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}
