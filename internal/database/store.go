package database

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps every field or parameter validation failure.
	ErrValidation = errors.New("validation failed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Store is the catalog store contract shared by the relational and document backends.
type Store interface {
	CreatePerson(ctx context.Context, person *Person) error
	UpsertPerson(ctx context.Context, person *Person) (int64, error)
	GetPerson(ctx context.Context, id int64) (*Person, error)
	GetPersonByExternalID(ctx context.Context, externalID string) (*Person, error)
	ListPeople(ctx context.Context, filter PersonFilter, params ListParams) ([]Person, int64, error)
	UpdatePerson(ctx context.Context, person *Person) error
	DeletePerson(ctx context.Context, id int64) error
	ListPersonSchools(ctx context.Context, personID int64) ([]School, error)
	LinkPersonSchool(ctx context.Context, personID, schoolID int64) error
	UnlinkPersonSchool(ctx context.Context, personID, schoolID int64) error

	CreateSchool(ctx context.Context, school *School) error
	GetOrCreateSchool(ctx context.Context, name string) (int64, error)
	GetSchool(ctx context.Context, id int64) (*School, error)
	ListSchools(ctx context.Context, params ListParams) ([]School, int64, error)
	UpdateSchool(ctx context.Context, school *School) error
	DeleteSchool(ctx context.Context, id int64) error

	CreateWork(ctx context.Context, work *Work) error
	GetWork(ctx context.Context, id int64) (*Work, error)
	ListWorks(ctx context.Context, filter WorkFilter, params ListParams) ([]Work, int64, error)
	ListPlaceholderWorks(ctx context.Context, prefix string) ([]Work, error)
	UpdateWork(ctx context.Context, work *Work) error
	DeleteWork(ctx context.Context, id int64) error

	CreateQuotation(ctx context.Context, quotation *Quotation) error
	GetQuotation(ctx context.Context, id int64) (*Quotation, error)
	ListQuotations(ctx context.Context, filter QuotationFilter, params ListParams) ([]Quotation, int64, error)
	RandomQuotations(ctx context.Context, k int) ([]Quotation, error)
	UpdateQuotation(ctx context.Context, quotation *Quotation) error
	DeleteQuotation(ctx context.Context, id int64) error

	SaveEnrichment(ctx context.Context, e *Enrichment) error
	Counts(ctx context.Context) (*Counts, error)
	Ping(ctx context.Context) error
	Close() error
}

// PersonFilter narrows ListPeople results.
type PersonFilter struct {
	Epoch    string
	SchoolID *int64
}

// WorkFilter narrows ListWorks results.
type WorkFilter struct {
	PersonID *int64
}

// QuotationFilter narrows ListQuotations results.
type QuotationFilter struct {
	PersonID *int64
}

// Enrichment carries everything resolved for one Person in a single pipeline pass.
// Nil fields are left untouched.
type Enrichment struct {
	PersonID   int64
	ImageURL   *string
	Biography  *string
	Works      []Work
	Quotations []Quotation
}

// Empty reports whether the enrichment would write nothing.
func (e *Enrichment) Empty() bool {
	return e.ImageURL == nil && e.Biography == nil && len(e.Works) == 0 && len(e.Quotations) == 0
}
