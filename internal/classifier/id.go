package classifier

import (
	"strings"
	"unicode"
)

// StableKey derives the identifier used to key seed data and object storage paths.
// It lowercases, folds accents, and joins alphanumeric runs with hyphens, so
// "Tomás de Aquino" and "Tomas  de aquino" both yield "tomas-de-aquino".
func StableKey(name string) string {
	folded := strings.ToLower(FoldAccents(NormalizeText(name)))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}
