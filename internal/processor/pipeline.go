package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/enrich"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

const (
	// Error reporting limits
	MaxErrorsToCollect = 100 // Maximum number of errors to collect

	// Sample error display limit
	SampleErrorCount = 5 // Number of sample errors to show
)

// Pipeline enriches every person, then every school, one at a time in id order.
// Each person's result is written with a single SaveEnrichment call.
type Pipeline struct {
	store    database.Store
	r        Resolvers
	progress io.Writer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) {
		p.progress = w
	}
}

// NewPipeline creates an enrichment pipeline over store.
func NewPipeline(store database.Store, resolvers Resolvers, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, r: resolvers}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run enriches the whole catalog. Failures for a single record are logged and
// counted; the run only aborts when the store itself is unreachable.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	_, total, err := p.store.ListPeople(ctx, database.PersonFilter{}, database.ListParams{Sort: database.SortIDAsc, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to count people: %w", err)
	}
	logger.Info("Enriching catalog", zap.Int64("people", total), zap.String("fill_policy", string(p.r.Policy.Mode())))

	progress, bar := p.newBar(total, "people")

	err = p.eachPerson(ctx, func(person *database.Person) error {
		defer bar.Increment()
		report.People++

		e := p.Enrich(ctx, person)
		if e.Empty() {
			report.Unchanged++
			return nil
		}
		if err := p.store.SaveEnrichment(ctx, e); err != nil {
			report.Failed++
			report.addError(fmt.Errorf("person %d (%s): %w", person.ID, person.Name, err))
			logger.Warn("Enrichment not saved",
				zap.String("person", person.Name),
				zap.String("step", "save"),
				zap.Error(err),
			)
			return p.checkStore(ctx, err)
		}
		report.Updated++
		return nil
	})
	bar.SetTotal(-1, true)
	progress.Wait()
	if err != nil {
		return report, err
	}

	if err := p.enrichSchools(ctx, report); err != nil {
		return report, err
	}

	p.summarize(report)
	return report, nil
}

// Enrich resolves the fields of person that the fill policy allows, without
// writing anything.
func (p *Pipeline) Enrich(ctx context.Context, person *database.Person) *database.Enrichment {
	e := &database.Enrichment{PersonID: person.ID}

	if p.r.Images != nil && p.r.Policy.ShouldFillImage(person.ImageURL) {
		if img := p.r.Images.Resolve(ctx, person.Name); img != "" && img != person.ImageURL {
			e.ImageURL = &img
		}
	}

	if p.r.Biographies != nil && p.r.Policy.ShouldFillBiography(person) {
		bio, tier := p.r.Biographies.Resolve(ctx, enrich.SubjectOf(person))
		if bio != "" && bio != person.Biography {
			e.Biography = &bio
			logger.Debug("Biography resolved", zap.String("person", person.Name), zap.String("tier", string(tier)))
		}
	}

	personID := person.ID
	if p.r.Works != nil {
		if n, ok := p.countRelated(ctx, person, "works", func() (int64, error) {
			_, total, err := p.store.ListWorks(ctx, database.WorkFilter{PersonID: &personID}, database.ListParams{Limit: 1})
			return total, err
		}); ok && p.r.Policy.ShouldFillList(n) {
			e.Works = p.r.Works.Resolve(ctx, person)
		}
	}

	if p.r.Quotes != nil {
		if n, ok := p.countRelated(ctx, person, "quotations", func() (int64, error) {
			_, total, err := p.store.ListQuotations(ctx, database.QuotationFilter{PersonID: &personID}, database.ListParams{Limit: 1})
			return total, err
		}); ok && p.r.Policy.ShouldFillList(n) {
			e.Quotations = p.r.Quotes.Resolve(person)
		}
	}

	return e
}

func (p *Pipeline) countRelated(ctx context.Context, person *database.Person, step string, count func() (int64, error)) (int64, bool) {
	n, err := count()
	if err != nil {
		logger.Warn("Count failed", zap.String("person", person.Name), zap.String("step", step), zap.Error(err))
		return 0, false
	}
	return n, true
}

func (p *Pipeline) enrichSchools(ctx context.Context, report *Report) error {
	if p.r.SchoolImages == nil {
		return nil
	}

	params := database.ListParams{Sort: database.SortIDAsc, Limit: database.MaxLimit}
	for {
		schools, _, err := p.store.ListSchools(ctx, params)
		if err != nil {
			return fmt.Errorf("failed to list schools: %w", err)
		}

		for i := range schools {
			school := &schools[i]
			report.Schools++
			if !p.r.Policy.ShouldFillImage(school.ImageURL) {
				continue
			}
			img := p.r.SchoolImages.Resolve(ctx, school.Name)
			if img == "" || img == school.ImageURL {
				continue
			}
			school.ImageURL = img
			if err := p.store.UpdateSchool(ctx, school); err != nil {
				report.Failed++
				report.addError(fmt.Errorf("school %d (%s): %w", school.ID, school.Name, err))
				logger.Warn("School image not saved", zap.String("school", school.Name), zap.Error(err))
				if err := p.checkStore(ctx, err); err != nil {
					return err
				}
				continue
			}
			report.SchoolsUpdated++
		}

		if len(schools) < params.Limit {
			return nil
		}
		params.Offset += params.Limit
	}
}

// RepairWorks retitles works that still carry the generated placeholder title.
func (p *Pipeline) RepairWorks(ctx context.Context) (*RepairReport, error) {
	works, err := p.store.ListPlaceholderWorks(ctx, enrich.PlaceholderWorkPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list placeholder works: %w", err)
	}

	report := &RepairReport{}
	if p.r.Works == nil {
		return report, nil
	}

	progress, bar := p.newBar(int64(len(works)), "works")
	defer progress.Wait()
	defer bar.SetTotal(-1, true)

	owners := map[int64]string{}
	for i := range works {
		work := &works[i]
		report.Checked++
		bar.Increment()

		owner := ""
		if work.PersonID != nil {
			name, ok := owners[*work.PersonID]
			if !ok {
				if person, err := p.store.GetPerson(ctx, *work.PersonID); err == nil {
					name = person.Name
				}
				owners[*work.PersonID] = name
			}
			owner = name
		}

		if !p.r.Works.Repair(ctx, work, owner) {
			continue
		}
		if err := p.store.UpdateWork(ctx, work); err != nil {
			report.Failed++
			logger.Warn("Work not repaired", zap.Int64("work_id", work.ID), zap.Error(err))
			if err := p.checkStore(ctx, err); err != nil {
				return report, err
			}
			continue
		}
		report.Repaired++
	}

	logger.Info("Work repair completed",
		zap.Int("checked", report.Checked),
		zap.Int("repaired", report.Repaired),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// eachPerson visits every person in ascending id order.
func (p *Pipeline) eachPerson(ctx context.Context, visit func(*database.Person) error) error {
	params := database.ListParams{Sort: database.SortIDAsc, Limit: database.MaxLimit}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		people, _, err := p.store.ListPeople(ctx, database.PersonFilter{}, params)
		if err != nil {
			return fmt.Errorf("failed to list people: %w", err)
		}
		for i := range people {
			if err := visit(&people[i]); err != nil {
				return err
			}
		}
		if len(people) < params.Limit {
			return nil
		}
		params.Offset += params.Limit
	}
}

// checkStore turns a write failure into a fatal error only when the store no
// longer answers.
func (p *Pipeline) checkStore(ctx context.Context, cause error) error {
	if errors.Is(cause, database.ErrValidation) || errors.Is(cause, database.ErrNotFound) {
		return nil
	}
	if err := p.store.Ping(ctx); err != nil {
		logger.Error("Catalog store unreachable, aborting", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (p *Pipeline) newBar(total int64, unit string) (*mpb.Progress, *mpb.Bar) {
	out := p.progress
	if out == nil {
		out = io.Discard
	}

	progress := mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name("Enriching: ", decor.WC{W: 12, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Name(" | "),
			decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}),
			decor.Name(" | "),
			decor.AverageSpeed(0, "%.1f "+unit+"/s", decor.WC{W: 12}),
		),
	)
	return progress, bar
}

func (r *Report) addError(err error) {
	if len(r.Errors) < MaxErrorsToCollect {
		r.Errors = append(r.Errors, err)
	}
}

func (p *Pipeline) summarize(r *Report) {
	logger.Info("Enrichment completed",
		zap.Int("people", r.People),
		zap.Int("updated", r.Updated),
		zap.Int("unchanged", r.Unchanged),
		zap.Int("failed", r.Failed),
		zap.Int("schools", r.Schools),
		zap.Int("schools_updated", r.SchoolsUpdated),
	)
	for i := 0; i < min(len(r.Errors), SampleErrorCount); i++ {
		logger.Warn("Sample enrichment error", zap.Int("n", i+1), zap.Error(r.Errors[i]))
	}
}
