package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// Counts returns per-entity totals in one pipelined round trip
func (s *Store) Counts(ctx context.Context) (*database.Counts, error) {
	var people, schools, works, quotations *redis.IntCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		people = pipe.ZCard(ctx, indexKey(entityPerson))
		schools = pipe.ZCard(ctx, indexKey(entitySchool))
		works = pipe.ZCard(ctx, indexKey(entityWork))
		quotations = pipe.ZCard(ctx, indexKey(entityQuotation))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	return &database.Counts{
		People:     people.Val(),
		Schools:    schools.Val(),
		Works:      works.Val(),
		Quotations: quotations.Val(),
	}, nil
}

// SaveEnrichment validates everything first, then applies one person's
// enrichment result in a single MULTI/EXEC block
func (s *Store) SaveEnrichment(ctx context.Context, e *database.Enrichment) error {
	if e.Empty() {
		return nil
	}

	person, err := getDoc[database.Person](ctx, s.client, entityPerson, e.PersonID)
	if err != nil {
		return err
	}

	for i := range e.Works {
		w := &e.Works[i]
		w.PersonID = &person.ID
		w.Prepare()
		if err := w.Validate(); err != nil {
			return err
		}
	}
	seen := map[string]bool{}
	for i := range e.Quotations {
		q := &e.Quotations[i]
		q.PersonID = &person.ID
		q.Prepare()
		if err := q.Validate(); err != nil {
			return err
		}
		if err := s.checkExternalIDFree(ctx, entityQuotation, q.ExternalID, 0); err != nil {
			return err
		}
		if q.ExternalID != nil {
			if seen[*q.ExternalID] {
				return fmt.Errorf("%w: external_id %q repeated", database.ErrValidation, *q.ExternalID)
			}
			seen[*q.ExternalID] = true
		}
	}

	now := s.now()
	if e.ImageURL != nil {
		person.ImageURL = *e.ImageURL
	}
	if e.Biography != nil {
		person.Biography = *e.Biography
	}
	person.UpdatedAt = now

	if err := s.allocate(ctx, entityWork, len(e.Works), func(i int, id int64) {
		e.Works[i].ID = id
		e.Works[i].CreatedAt = now
		e.Works[i].UpdatedAt = now
	}); err != nil {
		return err
	}
	if err := s.allocate(ctx, entityQuotation, len(e.Quotations), func(i int, id int64) {
		e.Quotations[i].ID = id
		e.Quotations[i].CreatedAt = now
		e.Quotations[i].UpdatedAt = now
	}); err != nil {
		return err
	}

	payload, err := encode(person)
	if err != nil {
		return fmt.Errorf("failed to encode person: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(entityPerson, person.ID), payload, 0)
		for i := range e.Works {
			if err := queueWork(ctx, pipe, &e.Works[i], nil); err != nil {
				return err
			}
		}
		for i := range e.Quotations {
			if err := queueQuotation(ctx, pipe, &e.Quotations[i], nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}
	return nil
}

// allocate reserves n consecutive ids for entity and hands each to assign.
func (s *Store) allocate(ctx context.Context, entity string, n int, assign func(i int, id int64)) error {
	if n == 0 {
		return nil
	}
	last, err := s.client.IncrBy(ctx, seqKey(entity), int64(n)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate %s ids: %w", entity, err)
	}
	first := last - int64(n) + 1
	for i := 0; i < n; i++ {
		assign(i, first+int64(i))
	}
	return nil
}
