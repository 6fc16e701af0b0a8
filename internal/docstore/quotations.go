package docstore

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// CreateQuotation inserts a quotation; a non-nil person_id must reference an existing person
func (s *Store) CreateQuotation(ctx context.Context, quotation *database.Quotation) error {
	quotation.Prepare()
	if err := quotation.Validate(); err != nil {
		return err
	}
	if err := s.checkPersonRef(ctx, quotation.PersonID); err != nil {
		return err
	}
	if err := s.checkExternalIDFree(ctx, entityQuotation, quotation.ExternalID, 0); err != nil {
		return err
	}

	id, err := s.nextID(ctx, entityQuotation)
	if err != nil {
		return err
	}
	quotation.ID = id
	quotation.CreatedAt = s.now()
	quotation.UpdatedAt = quotation.CreatedAt

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueQuotation(ctx, pipe, quotation, nil)
	})
	if err != nil {
		return fmt.Errorf("failed to write quotation: %w", err)
	}
	return nil
}

// queueQuotation adds the commands writing a quotation and its indexes to pipe.
func queueQuotation(ctx context.Context, pipe redis.Pipeliner, quotation *database.Quotation, previous *database.Quotation) error {
	doc := *quotation
	doc.Person = nil
	payload, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode quotation: %w", err)
	}

	pipe.Set(ctx, docKey(entityQuotation, quotation.ID), payload, 0)
	pipe.ZAdd(ctx, indexKey(entityQuotation), redis.Z{Score: float64(quotation.ID), Member: quotation.ID})

	if previous != nil {
		if previous.PersonID != nil && (quotation.PersonID == nil || *previous.PersonID != *quotation.PersonID) {
			pipe.SRem(ctx, personQuotationsKey(*previous.PersonID), quotation.ID)
		}
		if previous.ExternalID != nil && (quotation.ExternalID == nil || *previous.ExternalID != *quotation.ExternalID) {
			pipe.Del(ctx, externalIDKey(entityQuotation, *previous.ExternalID))
		}
	}
	if quotation.PersonID != nil {
		pipe.SAdd(ctx, personQuotationsKey(*quotation.PersonID), quotation.ID)
	}
	if quotation.ExternalID != nil {
		pipe.Set(ctx, externalIDKey(entityQuotation, *quotation.ExternalID), quotation.ID, 0)
	}
	return nil
}

// GetQuotation returns a quotation by id
func (s *Store) GetQuotation(ctx context.Context, id int64) (*database.Quotation, error) {
	return getDoc[database.Quotation](ctx, s.client, entityQuotation, id)
}

// ListQuotations returns a page of quotations and the total matching count
func (s *Store) ListQuotations(ctx context.Context, filter database.QuotationFilter, params database.ListParams) ([]database.Quotation, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	var quotations []database.Quotation
	var err error
	if filter.PersonID != nil {
		var ids []int64
		ids, err = setIDs(ctx, s.client, personQuotationsKey(*filter.PersonID))
		if err != nil {
			return nil, 0, err
		}
		quotations, err = getDocs[database.Quotation](ctx, s.client, entityQuotation, ids)
	} else {
		quotations, err = allDocs[database.Quotation](ctx, s.client, entityQuotation)
	}
	if err != nil {
		return nil, 0, err
	}

	result, total := page(quotations, params,
		func(q *database.Quotation) int64 { return q.ID },
		func(q *database.Quotation) string { return q.Text },
		nil,
	)
	return result, total, nil
}

// RandomQuotations returns k distinct quotations chosen uniformly at random,
// or every quotation when fewer than k exist
func (s *Store) RandomQuotations(ctx context.Context, k int) ([]database.Quotation, error) {
	if k < 1 || k > database.MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", database.ErrValidation, database.MaxLimit)
	}

	members, err := s.client.ZRange(ctx, indexKey(entityQuotation), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read quotation index: %w", err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > k {
		ids = ids[:k]
	}
	return getDocs[database.Quotation](ctx, s.client, entityQuotation, ids)
}

// UpdateQuotation replaces the fields of an existing quotation
func (s *Store) UpdateQuotation(ctx context.Context, quotation *database.Quotation) error {
	quotation.Prepare()
	if err := quotation.Validate(); err != nil {
		return err
	}

	existing, err := getDoc[database.Quotation](ctx, s.client, entityQuotation, quotation.ID)
	if err != nil {
		return err
	}
	if err := s.checkPersonRef(ctx, quotation.PersonID); err != nil {
		return err
	}
	if err := s.checkExternalIDFree(ctx, entityQuotation, quotation.ExternalID, quotation.ID); err != nil {
		return err
	}

	quotation.CreatedAt = existing.CreatedAt
	quotation.UpdatedAt = s.now()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueQuotation(ctx, pipe, quotation, existing)
	})
	if err != nil {
		return fmt.Errorf("failed to write quotation: %w", err)
	}
	return nil
}

// DeleteQuotation removes a quotation
func (s *Store) DeleteQuotation(ctx context.Context, id int64) error {
	quotation, err := getDoc[database.Quotation](ctx, s.client, entityQuotation, id)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(entityQuotation, id))
		pipe.ZRem(ctx, indexKey(entityQuotation), id)
		if quotation.PersonID != nil {
			pipe.SRem(ctx, personQuotationsKey(*quotation.PersonID), id)
		}
		if quotation.ExternalID != nil {
			pipe.Del(ctx, externalIDKey(entityQuotation, *quotation.ExternalID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	return nil
}
