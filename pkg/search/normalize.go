// Package search implements keyword derivation and the unranked
// AND-of-substrings matcher used by scoped and global document search.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the minimum rune count a split token needs to be kept.
const MinTokenLength = 3

// Normalize strips diacritics and lower-cases s.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '_', '-', '.':
		return true
	}
	return false
}

// Tokens derives the keyword set persisted with a record: every separator
// delimited token longer than two characters plus the full normalized name.
// The result is deduplicated and sorted.
func Tokens(name string) []string {
	normalized := Normalize(strings.TrimSpace(name))
	if normalized == "" {
		return []string{}
	}

	set := map[string]struct{}{normalized: {}}
	for _, tok := range strings.FieldsFunc(normalized, isSeparator) {
		if utf8.RuneCountInString(tok) >= MinTokenLength {
			set[tok] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}
