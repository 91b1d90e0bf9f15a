package utils

import "strings"

// NormalizeJoinCode uppercases and trims a user-typed join code so
// lookups are case-insensitive.
func NormalizeJoinCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
