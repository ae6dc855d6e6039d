package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text form input.
// Truncation counts runes so multibyte crop and record names never get split
// mid-character.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
