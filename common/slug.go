package common

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyIdentifier = errors.New("identifier cannot be empty")
	nonIdentChars      = regexp.MustCompile(`[^a-z0-9]+`)
)

// Identifier lowercases input and collapses every run of other characters into a
// single underscore, producing a name safe for collection and table identifiers.
// fallback is used when input has no usable characters.
func Identifier(input, fallback string) (string, error) {
	ident := identifier(input)
	if ident == "" {
		ident = identifier(fallback)
	}
	if ident == "" {
		return "", ErrEmptyIdentifier
	}
	if ident[0] >= '0' && ident[0] <= '9' {
		ident = "c_" + ident
	}
	return ident, nil
}

func identifier(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	ident := nonIdentChars.ReplaceAllString(lower, "_")
	return strings.Trim(ident, "_")
}
