// Implements file name sanitization.

package wiki

import (
	"strings"
	"unicode"
)

// SanitizeName maps a page title to a file system safe token. Letters,
// digits and hyphens are kept; every other run of characters, underscores
// included, becomes a single underscore. Separators at either end are
// dropped. An all-punctuation title becomes "_".
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		// Underscores and everything else collapse into one separator.
		pending = true
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
