// Package filex holds filesystem helpers for the export tree: directory
// creation and name sanitation.
package filex

import (
	"fmt"
	"os"
	"unicode"
)

// EnsureDir creates dir (and any parents) if missing and returns its path.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// Slug reduces a board name to a directory-safe form: letters and digits
// are kept, every other rune becomes '_'. Uniqueness across boards with
// colliding slugs comes from the board id the caller appends.
func Slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

// SafeFilename keeps letters, digits, '.', '_' and '-'; everything else
// becomes '_'. An empty result falls back to "file" so a download always
// has a destination name.
func SafeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, r)
		case r == '.' || r == '_' || r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "file"
	}
	return string(out)
}
