package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// SeedResult counts what a seed run inserted.
type SeedResult struct {
	Schools int
	People  int
	Links   int
	Skipped bool
}

// Bootstrap seeds the catalog only when the store holds no people yet.
func Bootstrap(ctx context.Context, store database.Store, c *Catalog) (*SeedResult, error) {
	counts, err := store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}
	if counts.People > 0 {
		logger.Info("Catalog already populated, skipping seed", zap.Int64("people", counts.People))
		return &SeedResult{Skipped: true}, nil
	}
	return Seed(ctx, store, c)
}

// Seed inserts schools, people, and person-school links that are not yet
// present. People already in the store (same external id or exact name) are
// left untouched apart from their links, so running it twice is harmless.
func Seed(ctx context.Context, store database.Store, c *Catalog) (*SeedResult, error) {
	cached := database.NewCachedStore(store)
	result := &SeedResult{}

	before, err := store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	for _, s := range c.Schools {
		id, err := cached.GetOrCreateSchool(ctx, s.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to seed school %q: %w", s.Name, err)
		}
		if s.Description == "" {
			continue
		}
		school, err := store.GetSchool(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load school %q: %w", s.Name, err)
		}
		if school.Description == "" {
			school.Description = s.Description
			if err := store.UpdateSchool(ctx, school); err != nil {
				return nil, fmt.Errorf("failed to describe school %q: %w", s.Name, err)
			}
		}
	}

	for i := range c.People {
		data := &c.People[i]

		personID, created, err := seedPerson(ctx, cached, data)
		if err != nil {
			return nil, err
		}
		if created {
			result.People++
		}

		for _, name := range data.Schools {
			schoolID, err := cached.GetOrCreateSchool(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to seed school %q: %w", name, err)
			}
			if err := store.LinkPersonSchool(ctx, personID, schoolID); err != nil {
				return nil, fmt.Errorf("failed to link %q to %q: %w", data.Name, name, err)
			}
			result.Links++
		}
	}

	after, err := store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}
	result.Schools = int(after.Schools - before.Schools)

	logger.Info("Seed completed",
		zap.Int("schools", result.Schools),
		zap.Int("people", result.People),
		zap.Int("links", result.Links),
	)
	return result, nil
}

func seedPerson(ctx context.Context, store *database.CachedStore, data *PersonData) (int64, bool, error) {
	if data.ExternalID != "" {
		if id, ok, err := store.PersonIDByExternalID(ctx, data.ExternalID); err != nil {
			return 0, false, err
		} else if ok {
			return id, false, nil
		}
	}

	existing, err := findByName(ctx, store, data.Name)
	if err != nil {
		return 0, false, err
	}
	if existing != 0 {
		return existing, false, nil
	}

	person, err := data.toPerson()
	if err != nil {
		return 0, false, fmt.Errorf("seed person %q: %w", data.Key, err)
	}
	id, err := store.UpsertPerson(ctx, person)
	if err != nil {
		return 0, false, fmt.Errorf("failed to seed person %q: %w", data.Name, err)
	}
	return id, true, nil
}

func findByName(ctx context.Context, store database.Store, name string) (int64, error) {
	params := database.ListParams{Search: name, Sort: database.SortIDAsc, Limit: database.MaxLimit}
	people, _, err := store.ListPeople(ctx, database.PersonFilter{}, params)
	if err != nil {
		return 0, fmt.Errorf("failed to look up %q: %w", name, err)
	}
	for _, p := range people {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return 0, nil
}

func (p *PersonData) toPerson() (*database.Person, error) {
	birth, err := parseDate(p.BirthDate)
	if err != nil {
		return nil, err
	}
	death, err := parseDate(p.DeathDate)
	if err != nil {
		return nil, err
	}

	person := &database.Person{
		Name:      p.Name,
		Epoch:     p.Epoch,
		BirthDate: birth,
		DeathDate: death,
		BirthYear: p.BirthYear,
		DeathYear: p.DeathYear,
		Interests: p.Interests,
	}
	if p.ExternalID != "" {
		ext := p.ExternalID
		person.ExternalID = &ext
	}
	if len(p.Schools) > 0 {
		person.MainSchool = p.Schools[0]
	}
	return person, nil
}
