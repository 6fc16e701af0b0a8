package enrich

import (
	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// AliasTable maps a display name to alternate spellings or transliterations
// to try against external indexes.
type AliasTable struct {
	entries map[string][]string
}

// NewAliasTable indexes aliases by the stable key of each display name.
func NewAliasTable(aliases map[string][]string) *AliasTable {
	t := &AliasTable{entries: make(map[string][]string, len(aliases))}
	for name, variants := range aliases {
		key := classifier.StableKey(name)
		t.entries[key] = append(t.entries[key], classifier.NormalizeTextArray(variants)...)
	}
	return t
}

// Variants returns the ordered, de-duplicated names to query: the canonical
// name, the table's aliases, then the accent-folded form.
func (t *AliasTable) Variants(name string) []string {
	name = classifier.NormalizeText(name)
	if name == "" {
		return nil
	}

	out := []string{name}
	seen := map[string]bool{name: true}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	if t != nil {
		for _, v := range t.entries[classifier.StableKey(name)] {
			add(v)
		}
	}
	add(classifier.FoldAccents(name))
	return out
}

// Len returns the number of names with aliases.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
