package merge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// A cases.Caser keeps state between calls, so each call builds its own.
func toUpper(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTaxID returns the 12-digit form of a BIN/IIN when s contains
// exactly 12 digits, and the trimmed input otherwise so that malformed
// identifiers stay visible.
func NormalizeTaxID(s string) string {
	if d := digitsOnly(s); len(d) == taxIDLength {
		return d
	}
	return strings.TrimSpace(s)
}

// ValidTaxID reports whether s is exactly 12 digits after stripping non-digits.
func ValidTaxID(s string) bool {
	return len(digitsOnly(s)) == taxIDLength
}

// NormalizeTariffCode strips non-digits and keeps the first 6.
func NormalizeTariffCode(s string) string {
	d := digitsOnly(s)
	if len(d) > tariffCodeLength {
		d = d[:tariffCodeLength]
	}
	return d
}

// NormalizePlate upper-cases a plate and drops everything but letters and digits.
func NormalizePlate(s string) string {
	var b strings.Builder
	for _, r := range toUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName reduces a company name to a comparison key: upper-cased,
// legal-form tokens removed, only letters and digits kept.
func NormalizeName(name string, legalForms []string) string {
	fields := strings.FieldsFunc(toUpper(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, f := range fields {
		if isLegalForm(f, legalForms) {
			continue
		}
		b.WriteString(f)
	}
	return b.String()
}

func isLegalForm(token string, forms []string) bool {
	for _, f := range forms {
		if token == f {
			return true
		}
	}
	return false
}

// Similarity returns 1 - editDistance/len(longer) over runes. Two empty
// strings are identical.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
