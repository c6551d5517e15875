// Package initials holds the single validation contract for operator
// initials: 2-3 alphabetic characters, normalized to upper case. Every
// operation requiring attribution goes through Normalize.
package initials

import (
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// Normalize trims and upper-cases the input and reports whether the result
// is a valid attribution code.
func Normalize(raw string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !pattern.MatchString(code) {
		return "", false
	}
	return code, true
}
