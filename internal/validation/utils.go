package validation

import "strings"

// TrimFields trims surrounding whitespace from every pointed-to string,
// so a whitespace-only value fails `required`.
func TrimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
