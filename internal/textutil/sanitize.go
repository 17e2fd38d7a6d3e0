package textutil

import (
	"strings"
	"unicode"
)

// SanitizeToken turns a stream or bucket name into a lowercase file-name
// token. ASCII letters, digits, hyphens and underscores survive; any run of
// other characters collapses to one underscore. Names with nothing usable
// yield "unknown".
func SanitizeToken(value string) string {
	parts := strings.FieldsFunc(strings.ToLower(value), func(r rune) bool {
		return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
	})
	if token := strings.Trim(strings.Join(parts, "_"), "_-"); token != "" {
		return token
	}
	return "unknown"
}
