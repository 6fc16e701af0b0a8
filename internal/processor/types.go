package processor

import (
	"errors"

	"github.com/palemoky/philosophy-catalog-api/internal/enrich"
)

// ErrStoreUnavailable aborts a run when the store stops answering after a write failure.
var ErrStoreUnavailable = errors.New("catalog store unavailable")

// Resolvers bundles the enrichment capabilities injected into a Pipeline.
type Resolvers struct {
	Images       enrich.ImageResolver
	SchoolImages enrich.ImageResolver
	Biographies  *enrich.BiographyResolver
	Works        *enrich.WorkResolver
	Quotes       *enrich.QuoteResolver
	Policy       enrich.FillPolicy
}

// Report summarizes an enrichment run.
type Report struct {
	People         int
	Updated        int
	Unchanged      int
	Failed         int
	Schools        int
	SchoolsUpdated int
	Errors         []error
}

// RepairReport summarizes a placeholder-title repair run.
type RepairReport struct {
	Checked  int
	Repaired int
	Failed   int
}
