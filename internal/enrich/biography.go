package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// Tier names the source a biography came from.
type Tier string

const (
	TierIEP         Tier = "iep"
	TierSEP         Tier = "sep"
	TierSeed        Tier = "seed"
	TierTemplate    Tier = "template"
	TierSynthesized Tier = "synthesized"
)

// GenericBiographySuffix ends the last-resort sentence for people with no
// known interests or school.
const GenericBiographySuffix = " fue un filósofo influyente."

// Subject is what biography resolution knows about a person.
type Subject struct {
	ExternalID string
	Name       string
	Epoch      string
	Interests  string
	School     string
	IEPLink    string
	SEPLink    string
}

// SubjectOf builds a Subject from a stored person.
func SubjectOf(p *database.Person) Subject {
	s := Subject{
		Name:      p.Name,
		Epoch:     p.Epoch,
		Interests: p.Interests,
		School:    p.MainSchool,
		IEPLink:   p.IEPLink,
		SEPLink:   p.SEPLink,
	}
	if p.ExternalID != nil {
		s.ExternalID = *p.ExternalID
	}
	return s
}

// BiographyResolver walks the biography tiers: encyclopedia links, the seed
// table, the category template, and finally a synthesized sentence.
type BiographyResolver struct {
	fetcher       *Fetcher
	catalog       *loader.Catalog
	maxParagraphs int
	maxChars      int
}

// NewBiographyResolver returns a resolver. catalog may be nil.
func NewBiographyResolver(fetcher *Fetcher, catalog *loader.Catalog, maxParagraphs, maxChars int) *BiographyResolver {
	return &BiographyResolver{
		fetcher:       fetcher,
		catalog:       catalog,
		maxParagraphs: maxParagraphs,
		maxChars:      maxChars,
	}
}

// Resolve always returns non-empty text and the tier that produced it.
func (r *BiographyResolver) Resolve(ctx context.Context, s Subject) (string, Tier) {
	if bio := r.fromLink(ctx, s, s.IEPLink, TierIEP); bio != "" {
		return bio, TierIEP
	}
	if bio := r.fromLink(ctx, s, s.SEPLink, TierSEP); bio != "" {
		return bio, TierSEP
	}

	if r.catalog != nil {
		if seed, ok := r.catalog.Lookup(s.ExternalID, s.Name); ok && seed.Biography != "" {
			return seed.Biography, TierSeed
		}
		if tmpl, ok := r.catalog.Template(classifier.Classify(s.Name, s.Epoch)); ok {
			return strings.ReplaceAll(tmpl, "{name}", s.Name), TierTemplate
		}
	}

	return SynthesizeBiography(s.Name, s.Interests, s.School), TierSynthesized
}

func (r *BiographyResolver) fromLink(ctx context.Context, s Subject, link string, tier Tier) string {
	if link == "" || r.fetcher == nil {
		return ""
	}
	body, _, err := r.fetcher.Get(ctx, link)
	if err != nil {
		logger.Warn("Biography fetch failed",
			zap.String("person", s.Name),
			zap.String("step", string(tier)),
			zap.Error(err),
		)
		return ""
	}
	return ExtractBiography(string(body), r.maxParagraphs, r.maxChars)
}

// SynthesizeBiography builds the minimal sentence used when no source knows
// the person.
func SynthesizeBiography(name, interests, school string) string {
	name = classifier.NormalizeText(name)
	interests = classifier.NormalizeText(interests)
	school = classifier.NormalizeText(school)

	switch {
	case interests != "" && school != "":
		return name + " fue un filósofo especializado en " + interests + ". Pertenece a la escuela " + school + "."
	case interests != "":
		return name + " fue un filósofo especializado en " + interests + "."
	case school != "":
		return name + " fue un filósofo de la escuela " + school + "."
	}
	return name + GenericBiographySuffix
}
