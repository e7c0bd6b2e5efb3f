// Package util provides small shared helpers.
package util

import "strings"

// SanitizeFilename replaces every character outside [a-zA-Z0-9] with an
// underscore so arbitrary identifiers (such as email addresses) can be
// used as file name components.
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return b.String()
}
