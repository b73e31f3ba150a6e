// Package similarity computes lexical closeness between two strings. Every
// function is pure and deterministic.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalises s for comparison: NFC composition, lowercase,
// punctuation and symbols removed, whitespace collapsed to single spaces.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	// A Caser holds transform state and must not be shared across goroutines.
	s = cases.Lower(language.Und).String(s)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			return -1
		case unicode.IsSpace(r):
			return ' '
		default:
			return r
		}
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits the normalised form of s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// EditSimilarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) with
// lengths and edits counted in runes. Two empty strings are identical; an
// empty string against a non-empty one scores 0.
func EditSimilarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}

	dist := levenshtein.Distance(a, b, nil)
	return 1 - float64(dist)/float64(longest)
}

// TokenOverlap returns the share of a's tokens that also occur in b, over the
// larger token count. Tokens of a are counted with multiplicity.
func TokenOverlap(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	longest := max(len(ta), len(tb))
	if longest == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	present := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		present[t] = struct{}{}
	}

	matched := 0
	for _, t := range ta {
		if _, ok := present[t]; ok {
			matched++
		}
	}

	return float64(matched) / float64(longest)
}
