package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText composes text to NFC and collapses whitespace runs, including
// no-break and zero-width spaces copied from encyclopedia pages, to one space.
// "Sócrates" typed with a combining accent and with a precomposed one normalize
// to the same string.
func NormalizeText(text string) string {
	return strings.Join(strings.FieldsFunc(norm.NFC.String(text), isSeparator), " ")
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff'
}

// NormalizeTextArray normalizes each entry and drops blanks and case-insensitive
// repeats, keeping the first spelling seen.
func NormalizeTextArray(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	result := make([]string, 0, len(texts))
	for _, text := range texts {
		normalized := NormalizeText(text)
		key := SearchKey(normalized)
		if normalized == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, normalized)
	}
	return result
}

// NormalizePointer normalizes an optional value; blank collapses to nil.
func NormalizePointer(text *string) *string {
	if text == nil {
		return nil
	}
	if normalized := NormalizeText(*text); normalized != "" {
		return &normalized
	}
	return nil
}

var accentFolder = runes.Remove(runes.In(unicode.Mn))

// FoldAccents strips combining marks after canonical decomposition,
// so "Sócrates" becomes "Socrates" and "Ñ" becomes "N".
func FoldAccents(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, accentFolder, norm.NFC), text)
	if err != nil {
		return text
	}
	return folded
}

// SearchKey returns the lowercase NFC form used for case-insensitive substring search.
// Accents are kept: "platon" does not match "Platón".
func SearchKey(text string) string {
	return strings.ToLower(norm.NFC.String(text))
}
