package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// Philosopher is one record of the philosophers API.
type Philosopher struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Life               string            `json:"life"`
	TopicalDescription string            `json:"topicalDescription"`
	Interests          string            `json:"interests"`
	BirthDate          string            `json:"birthDate"`
	DeathDate          string            `json:"deathDate"`
	BirthYear          string            `json:"birthYear"`
	DeathYear          string            `json:"deathYear"`
	School             string            `json:"school"`
	IEPLink            string            `json:"iepLink"`
	SEPLink            string            `json:"speLink"`
	WikiTitle          string            `json:"wikiTitle"`
	Images             PhilosopherImages `json:"images"`
	HasEBooks          bool              `json:"hasEBooks"`
	LibriVoxIDs        []string          `json:"libriVoxIDs"`
}

// PhilosopherImages groups image URLs by kind; each map is keyed by size label.
type PhilosopherImages struct {
	FaceImages             map[string]string `json:"faceImages"`
	FullImages             map[string]string `json:"fullImages"`
	Illustrations          map[string]string `json:"illustrations"`
	ThumbnailIllustrations map[string]string `json:"thumbnailIllustrations"`
}

// Quote is one record of the quotes API.
type Quote struct {
	ID          string `json:"id"`
	Quote       string `json:"quote"`
	Work        string `json:"work"`
	Year        string `json:"year"`
	Philosopher *struct {
		ID string `json:"id"`
	} `json:"philosopher"`
}

// PhilosophersAPI reads the bulk philosophers and quotes endpoints.
type PhilosophersAPI struct {
	fetcher *Fetcher
	base    string
}

// NewPhilosophersAPI returns a client rooted at base.
func NewPhilosophersAPI(fetcher *Fetcher, base string) *PhilosophersAPI {
	return &PhilosophersAPI{fetcher: fetcher, base: base}
}

// Philosophers returns every philosopher, with relative image paths made absolute.
func (a *PhilosophersAPI) Philosophers(ctx context.Context) ([]Philosopher, error) {
	var out []Philosopher
	if err := a.fetcher.GetJSON(ctx, joinURL(a.base, "/api/philosophers"), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch philosophers: %w", err)
	}
	for i := range out {
		img := &out[i].Images
		for _, m := range []map[string]string{img.FaceImages, img.FullImages, img.Illustrations, img.ThumbnailIllustrations} {
			for k, v := range m {
				if strings.HasPrefix(v, "/") {
					m[k] = joinURL(a.base, v)
				}
			}
		}
	}
	return out, nil
}

// Quotes returns every quote.
func (a *PhilosophersAPI) Quotes(ctx context.Context) ([]Quote, error) {
	var out []Quote
	if err := a.fetcher.GetJSON(ctx, joinURL(a.base, "/api/quotes"), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return out, nil
}

// ImportResult counts what an import run wrote.
type ImportResult struct {
	People       int
	Links        int
	Quotations   int
	Unattributed int
	Skipped      int
}

// Importer loads the philosophers API into the catalog store.
type Importer struct {
	api   *PhilosophersAPI
	store *database.CachedStore
}

// NewImporter returns an importer writing to store.
func NewImporter(api *PhilosophersAPI, store database.Store) *Importer {
	return &Importer{api: api, store: database.NewCachedStore(store)}
}

// Import upserts every philosopher by external id, links schools, then
// attaches quotes by philosopher id. Quotes whose philosopher is unknown are
// kept with no person.
func (im *Importer) Import(ctx context.Context) (*ImportResult, error) {
	philosophers, err := im.api.Philosophers(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i := range philosophers {
		ph := &philosophers[i]
		if strings.TrimSpace(ph.ID) == "" || strings.TrimSpace(ph.Name) == "" {
			result.Skipped++
			continue
		}

		id, err := im.upsertPhilosopher(ctx, ph)
		if errors.Is(err, database.ErrValidation) {
			logger.Warn("Skipping invalid philosopher", zap.String("person", ph.Name), zap.Error(err))
			result.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		result.People++

		if school := classifier.NormalizeText(ph.School); school != "" {
			schoolID, err := im.store.GetOrCreateSchool(ctx, school)
			if err != nil {
				return nil, fmt.Errorf("failed to get/create school %q: %w", school, err)
			}
			if err := im.store.LinkPersonSchool(ctx, id, schoolID); err != nil {
				return nil, fmt.Errorf("failed to link %q to %q: %w", ph.Name, school, err)
			}
			result.Links++
		}
	}

	quotes, err := im.api.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		created, attributed, err := im.importQuote(ctx, &quotes[i])
		if err != nil {
			return nil, err
		}
		if !created {
			result.Skipped++
			continue
		}
		result.Quotations++
		if !attributed {
			result.Unattributed++
		}
	}

	logger.Info("Import completed",
		zap.Int("people", result.People),
		zap.Int("links", result.Links),
		zap.Int("quotations", result.Quotations),
		zap.Int("unattributed", result.Unattributed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (im *Importer) upsertPhilosopher(ctx context.Context, ph *Philosopher) (int64, error) {
	person, err := toPerson(ph)
	if err != nil {
		return 0, err
	}

	// keep values earlier enrichment runs resolved
	existing, err := im.store.GetPersonByExternalID(ctx, ph.ID)
	switch {
	case err == nil:
		if person.ImageURL == "" {
			person.ImageURL = existing.ImageURL
		}
		if person.Biography == "" {
			person.Biography = existing.Biography
		}
		if person.Epoch == "" {
			person.Epoch = existing.Epoch
		}
	case !errors.Is(err, database.ErrNotFound):
		return 0, err
	}

	id, err := im.store.UpsertPerson(ctx, person)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert %q: %w", ph.Name, err)
	}
	return id, nil
}

func (im *Importer) importQuote(ctx context.Context, q *Quote) (created, attributed bool, err error) {
	text := strings.TrimSpace(q.Quote)
	if text == "" {
		return false, false, nil
	}

	quotation := &database.Quotation{
		Text:       text,
		SourceWork: strings.TrimSpace(q.Work),
		Year:       strings.TrimSpace(q.Year),
	}
	if id := strings.TrimSpace(q.ID); id != "" {
		quotation.ExternalID = &id
	}
	if q.Philosopher != nil && q.Philosopher.ID != "" {
		phID := q.Philosopher.ID
		quotation.PhilosopherExternalID = &phID

		personID, ok, err := im.store.PersonIDByExternalID(ctx, phID)
		if err != nil {
			return false, false, err
		}
		if ok {
			quotation.PersonID = &personID
		}
	}

	err = im.store.CreateQuotation(ctx, quotation)
	if errors.Is(err, database.ErrValidation) {
		// duplicate external id from an earlier run
		logger.Debug("Skipping quote", zap.String("external_id", q.ID), zap.Error(err))
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to create quote %q: %w", q.ID, err)
	}
	return true, quotation.PersonID != nil, nil
}

func toPerson(ph *Philosopher) (*database.Person, error) {
	ext := strings.TrimSpace(ph.ID)
	person := &database.Person{
		ExternalID:         &ext,
		Name:               ph.Name,
		BirthYear:          strings.TrimSpace(ph.BirthYear),
		DeathYear:          strings.TrimSpace(ph.DeathYear),
		MainSchool:         classifier.NormalizeText(ph.School),
		Interests:          strings.TrimSpace(ph.Interests),
		TopicalDescription: strings.TrimSpace(ph.TopicalDescription),
		IEPLink:            strings.TrimSpace(ph.IEPLink),
		SEPLink:            strings.TrimSpace(ph.SEPLink),
		WikiTitle:          strings.TrimSpace(ph.WikiTitle),
		ImageURL:           firstImage(ph.Images.FaceImages, ph.Images.FullImages),
	}

	person.BirthDate = parseAPIDate(ph.BirthDate)
	person.DeathDate = parseAPIDate(ph.DeathDate)
	if person.BirthDate != nil && person.DeathDate != nil &&
		time.Time(*person.DeathDate).Before(time.Time(*person.BirthDate)) {
		person.BirthDate, person.DeathDate = nil, nil
	}

	if year, ok := parseYearLabel(person.BirthYear); ok {
		person.Epoch = classifier.EpochForYear(year)
	} else if person.BirthDate != nil {
		person.Epoch = classifier.EpochForYear(time.Time(*person.BirthDate).Year())
	}

	images, err := json.Marshal(ph.Images)
	if err != nil {
		return nil, fmt.Errorf("failed to encode images: %w", err)
	}
	person.Images = datatypes.JSON(images)

	if len(ph.LibriVoxIDs) > 0 {
		ids, err := json.Marshal(ph.LibriVoxIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode librivox ids: %w", err)
		}
		person.LibriVoxIDs = datatypes.JSON(ids)
	}
	return person, nil
}

func firstImage(groups ...map[string]string) string {
	for _, m := range groups {
		keys := make([]string, 0, len(m))
		for k, v := range m {
			if v != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			continue
		}
		slices.Sort(keys)
		return m[keys[0]]
	}
	return ""
}

// parseAPIDate accepts YYYY-MM-DD within years 1..9999 and ignores anything else.
func parseAPIDate(s string) *datatypes.Date {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil || t.Year() < 1 {
		return nil
	}
	d := datatypes.Date(t)
	return &d
}

var circaMarkers = map[string]bool{"c": true, "c.": true, "ca": true, "ca.": true, "circa": true, "~": true}

// parseYearLabel reads labels like "1724", "470 BC", "384 a.C." or "c. 470 BC".
func parseYearLabel(label string) (int, bool) {
	fields := strings.Fields(label)
	for len(fields) > 0 && circaMarkers[strings.ToLower(fields[0])] {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(strings.TrimRight(strings.TrimLeft(fields[0], "c.~"), "?"))
	if err != nil {
		return 0, false
	}
	lower := strings.ToLower(label)
	if strings.Contains(lower, "bc") || strings.Contains(lower, "a.c") || strings.Contains(lower, "a. c") {
		year = -year
	}
	return year, true
}
