package common

import "strings"

const (
	minPhoneDigits = 8
	maxPhoneDigits = 15
)

// NormalizePhone returns the canonical stored form of a phone number: international
// digits only, without "+" or the "00" call prefix. Formatting characters are dropped.
// Anything else (letters, too short, too long) yields "" so lookups simply miss.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.ToLower(s), "whatsapp:")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return ""
		}
	}

	digits := strings.TrimPrefix(b.String(), "00")
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return ""
	}
	return digits
}
