package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxInputLength = 500

// SanitizeString cleans free-form player input: team names and open
// answers. Strips tags, null bytes and surrounding whitespace, then
// caps the length.
func SanitizeString(input string) string {
	input = htmlPolicy.Sanitize(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	if len(input) > maxInputLength {
		input = input[:maxInputLength]
	}

	return input
}

// ValidateTeamName checks a sanitized team name for acceptable length.
func ValidateTeamName(name string) bool {
	return len(name) >= 1 && len(name) <= 100
}
