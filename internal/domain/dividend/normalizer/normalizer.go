// Package normalizer converts the full-width text printed on SBI dividend notices
// into plain half-width values suitable for CSV and arithmetic.
package normalizer

import (
	"strings"

	"golang.org/x/text/width"
)

const ideographicSpace = '　'

// thousandsSeparators are removed by StripSeparators. The full-width comma is
// listed as well because stripping runs on the raw token.
const thousandsSeparators = ",，"

type options struct {
	stripSpaces     bool
	stripChars      string
	stripSeparators bool
}

// Option selects an optional transformation for Normalize.
type Option func(*options)

// StripSpaces removes full-width and ASCII spaces anywhere in the token.
func StripSpaces() Option {
	return func(o *options) { o.stripSpaces = true }
}

// StripChars removes every rune in chars (matched before width folding, so
// pass both the full-width and half-width forms when needed).
func StripChars(chars string) Option {
	return func(o *options) { o.stripChars += chars }
}

// StripSeparators removes thousands separators.
func StripSeparators() Option {
	return func(o *options) { o.stripSeparators = true }
}

// Normalize folds full-width ASCII digits, letters and punctuation to their
// half-width forms, applies the requested strip options and trims the result.
// Full-width spaces that survive are turned into ASCII spaces, so interior
// padding such as "１２月　１日" becomes "12月 1日".
func Normalize(s string, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.stripChars != "" {
		s = removeRunes(s, o.stripChars)
	}
	if o.stripSpaces {
		s = removeRunes(s, " 　")
	}
	if o.stripSeparators {
		s = removeRunes(s, thousandsSeparators)
	}

	s = strings.Map(func(r rune) rune {
		if r == ideographicSpace {
			return ' '
		}
		return r
	}, s)
	s = width.Fold.String(s)

	return strings.TrimSpace(s)
}

// Fold only applies width folding, without trimming or stripping.
func Fold(s string) string {
	return width.Fold.String(s)
}

// IsBlank reports whether a rendered line carries no visible text.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func removeRunes(s, set string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(set, r) {
			return -1
		}
		return r
	}, s)
}
