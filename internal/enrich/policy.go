package enrich

import (
	"fmt"
	"strings"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// FillMode decides which existing values enrichment may overwrite.
type FillMode string

const (
	// FillEmpty fills only fields that are exactly empty.
	FillEmpty FillMode = "empty"
	// FillHeuristic also replaces values that look like placeholders.
	FillHeuristic FillMode = "heuristic"
)

// FillPolicy applies a FillMode to person fields.
type FillPolicy struct {
	mode    FillMode
	avatars AvatarGenerator
}

// NewFillPolicy parses mode, defaulting to FillEmpty when blank.
func NewFillPolicy(mode string, avatars AvatarGenerator) (FillPolicy, error) {
	switch FillMode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", FillEmpty:
		return FillPolicy{mode: FillEmpty, avatars: avatars}, nil
	case FillHeuristic:
		return FillPolicy{mode: FillHeuristic, avatars: avatars}, nil
	}
	return FillPolicy{}, fmt.Errorf("unknown fill policy %q", mode)
}

// Mode returns the active mode.
func (p FillPolicy) Mode() FillMode {
	return p.mode
}

// ShouldFillImage reports whether an image URL should be resolved.
func (p FillPolicy) ShouldFillImage(current string) bool {
	if strings.TrimSpace(current) == "" {
		return true
	}
	return p.mode == FillHeuristic && p.avatars.IsPlaceholder(current)
}

// ShouldFillBiography reports whether the person's biography should be resolved.
func (p FillPolicy) ShouldFillBiography(person *database.Person) bool {
	bio := strings.TrimSpace(person.Biography)
	if bio == "" {
		return true
	}
	if p.mode != FillHeuristic {
		return false
	}
	return strings.HasSuffix(bio, strings.TrimSpace(GenericBiographySuffix)) ||
		bio == SynthesizeBiography(person.Name, person.Interests, person.MainSchool)
}

// ShouldFillList reports whether a related list with count rows should get
// generated entries. Existing rows are never replaced.
func (p FillPolicy) ShouldFillList(count int64) bool {
	return count == 0
}
