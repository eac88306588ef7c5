package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Fold prepares a free-text label for table lookups: full-width characters are
// narrowed, surrounding space is trimmed and the result is lower-cased.
// A Caser keeps state, so one is built per call instead of sharing a global.
func Fold(s string) string {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

// Title renders a canonical tag for display, e.g. "daily" -> "Daily".
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}
