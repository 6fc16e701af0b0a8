package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// CreateWork inserts a work; a non-nil person_id must reference an existing person
func (s *Store) CreateWork(ctx context.Context, work *database.Work) error {
	work.Prepare()
	if err := work.Validate(); err != nil {
		return err
	}
	if err := s.checkPersonRef(ctx, work.PersonID); err != nil {
		return err
	}

	id, err := s.nextID(ctx, entityWork)
	if err != nil {
		return err
	}
	work.ID = id
	work.CreatedAt = s.now()
	work.UpdatedAt = work.CreatedAt

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueWork(ctx, pipe, work, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to write work: %w", err)
	}
	return nil
}

// queueWork adds the commands writing a work and its owner index to pipe.
func queueWork(ctx context.Context, pipe redis.Pipeliner, work *database.Work, previousOwner *int64) error {
	doc := *work
	doc.Person = nil
	payload, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode work: %w", err)
	}

	pipe.Set(ctx, docKey(entityWork, work.ID), payload, 0)
	pipe.ZAdd(ctx, indexKey(entityWork), redis.Z{Score: float64(work.ID), Member: work.ID})
	if previousOwner != nil && (work.PersonID == nil || *previousOwner != *work.PersonID) {
		pipe.SRem(ctx, personWorksKey(*previousOwner), work.ID)
	}
	if work.PersonID != nil {
		pipe.SAdd(ctx, personWorksKey(*work.PersonID), work.ID)
	}
	return nil
}

// GetWork returns a work by id
func (s *Store) GetWork(ctx context.Context, id int64) (*database.Work, error) {
	return getDoc[database.Work](ctx, s.client, entityWork, id)
}

// ListWorks returns a page of works and the total matching count
func (s *Store) ListWorks(ctx context.Context, filter database.WorkFilter, params database.ListParams) ([]database.Work, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	var works []database.Work
	var err error
	if filter.PersonID != nil {
		var ids []int64
		ids, err = setIDs(ctx, s.client, personWorksKey(*filter.PersonID))
		if err != nil {
			return nil, 0, err
		}
		works, err = getDocs[database.Work](ctx, s.client, entityWork, ids)
	} else {
		works, err = allDocs[database.Work](ctx, s.client, entityWork)
	}
	if err != nil {
		return nil, 0, err
	}

	result, total := page(works, params,
		func(w *database.Work) int64 { return w.ID },
		func(w *database.Work) string { return w.Title },
		nil,
	)
	return result, total, nil
}

// ListPlaceholderWorks returns every work whose title starts with prefix, in id order
func (s *Store) ListPlaceholderWorks(ctx context.Context, prefix string) ([]database.Work, error) {
	works, err := allDocs[database.Work](ctx, s.client, entityWork)
	if err != nil {
		return nil, err
	}

	matched := works[:0]
	for _, w := range works {
		if w.HasPlaceholderTitle(prefix) {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

// UpdateWork replaces the fields of an existing work
func (s *Store) UpdateWork(ctx context.Context, work *database.Work) error {
	work.Prepare()
	if err := work.Validate(); err != nil {
		return err
	}

	existing, err := getDoc[database.Work](ctx, s.client, entityWork, work.ID)
	if err != nil {
		return err
	}
	if err := s.checkPersonRef(ctx, work.PersonID); err != nil {
		return err
	}

	work.CreatedAt = existing.CreatedAt
	work.UpdatedAt = s.now()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueWork(ctx, pipe, work, existing.PersonID)
	})
	if err != nil {
		return fmt.Errorf("failed to write work: %w", err)
	}
	return nil
}

// DeleteWork removes a work
func (s *Store) DeleteWork(ctx context.Context, id int64) error {
	work, err := getDoc[database.Work](ctx, s.client, entityWork, id)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(entityWork, id))
		pipe.ZRem(ctx, indexKey(entityWork), id)
		if work.PersonID != nil {
			pipe.SRem(ctx, personWorksKey(*work.PersonID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}
	return nil
}
