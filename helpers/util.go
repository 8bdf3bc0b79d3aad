package helpers

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// GetSplitPart splits target by separate and returns the part at index
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// NormalizeSpace collapses every run of whitespace into a single space and trims the result
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// StripQuery removes the query string and fragment from a URL
func StripQuery(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		return link[:i]
	}
	return link
}
