// Package slug derives URL-safe identifiers from display names.
package slug

import "strings"

// Make lowercases the input and collapses every run of non-alphanumeric
// characters into a single hyphen, with no leading or trailing hyphen.
// Apostrophes are dropped outright, so "Men's Jacket" reads "mens-jacket"
// rather than "men-s-jacket".
func Make(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == '\'' || r == '’':
			// dropped, never a separator
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen && b.Len() > 0:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// IsValid reports whether s already matches the slug shape.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	return s == Make(s) && !strings.Contains(s, "--")
}
