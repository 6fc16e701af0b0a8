package enrich

import (
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
)

// PlaceholderQuotation is the generic text used when no real quotation is known.
func PlaceholderQuotation(name string) string {
	return "Reflexión filosófica de " + name
}

// QuoteResolver draws curated quotations from the seed catalog.
type QuoteResolver struct {
	catalog     *loader.Catalog
	placeholder bool
}

// NewQuoteResolver returns a resolver. With placeholder set, people missing
// from the catalog get one generic quotation.
func NewQuoteResolver(catalog *loader.Catalog, placeholder bool) *QuoteResolver {
	return &QuoteResolver{catalog: catalog, placeholder: placeholder}
}

// Resolve returns unsaved quotations for p, possibly none.
func (r *QuoteResolver) Resolve(p *database.Person) []database.Quotation {
	if r.catalog != nil {
		ext := ""
		if p.ExternalID != nil {
			ext = *p.ExternalID
		}
		if seed, ok := r.catalog.Lookup(ext, p.Name); ok && len(seed.Quotations) > 0 {
			out := make([]database.Quotation, 0, len(seed.Quotations))
			for _, text := range seed.Quotations {
				out = append(out, database.Quotation{Text: text})
			}
			return out
		}
	}

	if !r.placeholder {
		return nil
	}
	return []database.Quotation{{Text: PlaceholderQuotation(p.Name)}}
}
