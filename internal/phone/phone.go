// Package phone canonicalises phone numbers before they are stored or compared.
package phone

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest normalised number accepted (E.164 allows 15 digits).
const MaxLength = 16

// Normalize folds compatibility characters (full-width digits, fancy plus signs) with
// NFKC and keeps only digits plus a single leading '+'. Separators such as spaces,
// dashes, dots and parentheses are dropped.
func Normalize(raw string) string {
	folded := norm.NFKC.String(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(folded))
	for i, r := range folded {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether a normalised number is plausible.
func Valid(n string) bool {
	digits := strings.TrimPrefix(n, "+")
	if len(digits) < 3 || len(n) > MaxLength {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
