package classifier

import (
	"math"
	"strings"
)

// Canonical epoch labels stored on Person records.
const (
	EpochAncient      = "Antigua"
	EpochMedieval     = "Medieval"
	EpochModern       = "Moderna"
	EpochContemporary = "Contemporánea"
)

// epochs is ordered by time; each epoch runs from its start year (negative
// for BCE) up to the start of the next one.
var epochs = []struct {
	key   string
	name  string
	start int
}{
	{"antigua", EpochAncient, math.MinInt},
	{"medieval", EpochMedieval, 476},
	{"moderna", EpochModern, 1453},
	{"contemporanea", EpochContemporary, 1800},
}

// english and short aliases accepted on input
var epochAliases = map[string]string{
	"ancient":       "antigua",
	"antiguedad":    "antigua",
	"classical":     "antigua",
	"middle ages":   "medieval",
	"edad media":    "medieval",
	"modern":        "moderna",
	"contemporary":  "contemporanea",
	"contemporaneo": "contemporanea",
}

// NormalizeEpoch maps free-form epoch input onto the canonical label when
// recognized. Unknown labels come back whitespace-normalized; blank input is "".
func NormalizeEpoch(label string) string {
	label = NormalizeText(label)
	key := strings.ToLower(FoldAccents(label))
	if alias, ok := epochAliases[key]; ok {
		key = alias
	}
	for _, e := range epochs {
		if e.key == key {
			return e.name
		}
	}
	return label
}

// EpochForYear returns the canonical epoch containing year (negative for BCE).
func EpochForYear(year int) string {
	for i := len(epochs) - 1; i > 0; i-- {
		if year >= epochs[i].start {
			return epochs[i].name
		}
	}
	return epochs[0].name
}
