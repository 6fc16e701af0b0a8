package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// Store is the redis-backed catalog store. Multi-key writes go through
// MULTI/EXEC so that a record and its indexes change together.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

var _ database.Store = (*Store)(nil)

// New wraps a connected client.
func New(client *redis.Client) *Store {
	return &Store{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Ping checks store connectivity
func (s *Store) Ping(ctx context.Context) error {
	return ping(ctx, s.client)
}

// Close releases the client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) nextID(ctx context.Context, entity string) (int64, error) {
	id, err := s.client.Incr(ctx, seqKey(entity)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", entity, err)
	}
	return id, nil
}

// CreatePerson inserts a new person
func (s *Store) CreatePerson(ctx context.Context, person *database.Person) error {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return err
	}
	if err := s.checkExternalIDFree(ctx, entityPerson, person.ExternalID, 0); err != nil {
		return err
	}

	id, err := s.nextID(ctx, entityPerson)
	if err != nil {
		return err
	}
	person.ID = id
	person.CreatedAt = s.now()
	person.UpdatedAt = person.CreatedAt

	return s.writePerson(ctx, person, nil)
}

// UpsertPerson inserts or replaces a person, matching by external id when present, else by id
func (s *Store) UpsertPerson(ctx context.Context, person *database.Person) (int64, error) {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return 0, err
	}

	var existingID int64
	switch {
	case person.ExternalID != nil:
		id, err := lookupID(ctx, s.client, externalIDKey(entityPerson, *person.ExternalID))
		if err != nil {
			return 0, err
		}
		existingID = id
	case person.ID != 0:
		ok, err := exists(ctx, s.client, docKey(entityPerson, person.ID))
		if err != nil {
			return 0, err
		}
		if ok {
			existingID = person.ID
		}
	}

	if existingID == 0 {
		person.ID = 0
		if err := s.CreatePerson(ctx, person); err != nil {
			return 0, err
		}
		return person.ID, nil
	}

	person.ID = existingID
	if err := s.UpdatePerson(ctx, person); err != nil {
		return 0, err
	}
	return person.ID, nil
}

// GetPerson returns a person with its schools
func (s *Store) GetPerson(ctx context.Context, id int64) (*database.Person, error) {
	person, err := getDoc[database.Person](ctx, s.client, entityPerson, id)
	if err != nil {
		return nil, err
	}
	schools, err := s.schoolsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	person.Schools = schools
	return person, nil
}

// GetPersonByExternalID returns the person imported under the given upstream id
func (s *Store) GetPersonByExternalID(ctx context.Context, externalID string) (*database.Person, error) {
	id, err := lookupID(ctx, s.client, externalIDKey(entityPerson, externalID))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, database.ErrNotFound
	}
	return getDoc[database.Person](ctx, s.client, entityPerson, id)
}

// ListPeople returns a page of people and the total matching count
func (s *Store) ListPeople(ctx context.Context, filter database.PersonFilter, params database.ListParams) ([]database.Person, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	var people []database.Person
	var err error
	if filter.SchoolID != nil {
		var ids []int64
		ids, err = setIDs(ctx, s.client, schoolPeopleKey(*filter.SchoolID))
		if err != nil {
			return nil, 0, err
		}
		people, err = getDocs[database.Person](ctx, s.client, entityPerson, ids)
	} else {
		people, err = allDocs[database.Person](ctx, s.client, entityPerson)
	}
	if err != nil {
		return nil, 0, err
	}

	// a blank filter normalizes to "" and matches everyone
	epoch := classifier.NormalizeEpoch(filter.Epoch)

	result, total := page(people, params,
		func(p *database.Person) int64 { return p.ID },
		func(p *database.Person) string { return p.Name },
		func(p *database.Person) bool { return epoch == "" || p.Epoch == epoch },
	)
	return result, total, nil
}

// UpdatePerson replaces every scalar field of an existing person
func (s *Store) UpdatePerson(ctx context.Context, person *database.Person) error {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return err
	}

	existing, err := getDoc[database.Person](ctx, s.client, entityPerson, person.ID)
	if err != nil {
		return err
	}
	if err := s.checkExternalIDFree(ctx, entityPerson, person.ExternalID, person.ID); err != nil {
		return err
	}

	person.CreatedAt = existing.CreatedAt
	person.UpdatedAt = s.now()
	return s.writePerson(ctx, person, existing.ExternalID)
}

func (s *Store) writePerson(ctx context.Context, person *database.Person, previousExternalID *string) error {
	doc := *person
	doc.Schools = nil
	payload, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode person: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(entityPerson, person.ID), payload, 0)
		pipe.ZAdd(ctx, indexKey(entityPerson), redis.Z{Score: float64(person.ID), Member: person.ID})
		if previousExternalID != nil && (person.ExternalID == nil || *previousExternalID != *person.ExternalID) {
			pipe.Del(ctx, externalIDKey(entityPerson, *previousExternalID))
		}
		if person.ExternalID != nil {
			pipe.Set(ctx, externalIDKey(entityPerson, *person.ExternalID), person.ID, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write person: %w", err)
	}
	return nil
}

// DeletePerson removes a person together with its works and quotations,
// and detaches it from every school, in one MULTI/EXEC block
func (s *Store) DeletePerson(ctx context.Context, id int64) error {
	person, err := getDoc[database.Person](ctx, s.client, entityPerson, id)
	if err != nil {
		return err
	}

	workIDs, err := setIDs(ctx, s.client, personWorksKey(id))
	if err != nil {
		return err
	}
	quotationIDs, err := setIDs(ctx, s.client, personQuotationsKey(id))
	if err != nil {
		return err
	}
	quotations, err := getDocs[database.Quotation](ctx, s.client, entityQuotation, quotationIDs)
	if err != nil {
		return err
	}
	schoolIDs, err := setIDs(ctx, s.client, personSchoolsKey(id))
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, wid := range workIDs {
			pipe.Del(ctx, docKey(entityWork, wid))
			pipe.ZRem(ctx, indexKey(entityWork), wid)
		}
		for _, q := range quotations {
			pipe.Del(ctx, docKey(entityQuotation, q.ID))
			pipe.ZRem(ctx, indexKey(entityQuotation), q.ID)
			if q.ExternalID != nil {
				pipe.Del(ctx, externalIDKey(entityQuotation, *q.ExternalID))
			}
		}
		for _, sid := range schoolIDs {
			pipe.SRem(ctx, schoolPeopleKey(sid), id)
		}
		pipe.Del(ctx, personWorksKey(id), personQuotationsKey(id), personSchoolsKey(id))
		pipe.Del(ctx, docKey(entityPerson, id))
		pipe.ZRem(ctx, indexKey(entityPerson), id)
		if person.ExternalID != nil {
			pipe.Del(ctx, externalIDKey(entityPerson, *person.ExternalID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

// ListPersonSchools returns the schools linked to a person
func (s *Store) ListPersonSchools(ctx context.Context, personID int64) ([]database.School, error) {
	ok, err := exists(ctx, s.client, docKey(entityPerson, personID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.schoolsOf(ctx, personID)
}

func (s *Store) schoolsOf(ctx context.Context, personID int64) ([]database.School, error) {
	ids, err := setIDs(ctx, s.client, personSchoolsKey(personID))
	if err != nil {
		return nil, err
	}
	return getDocs[database.School](ctx, s.client, entitySchool, ids)
}

// LinkPersonSchool associates a person with a school; linking twice is a no-op
func (s *Store) LinkPersonSchool(ctx context.Context, personID, schoolID int64) error {
	if err := s.checkPair(ctx, personID, schoolID); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, personSchoolsKey(personID), schoolID)
		pipe.SAdd(ctx, schoolPeopleKey(schoolID), personID)
		return nil
	})
	return err
}

// UnlinkPersonSchool removes the association, if any
func (s *Store) UnlinkPersonSchool(ctx context.Context, personID, schoolID int64) error {
	if err := s.checkPair(ctx, personID, schoolID); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, personSchoolsKey(personID), schoolID)
		pipe.SRem(ctx, schoolPeopleKey(schoolID), personID)
		return nil
	})
	return err
}

func (s *Store) checkPair(ctx context.Context, personID, schoolID int64) error {
	for _, key := range []string{docKey(entityPerson, personID), docKey(entitySchool, schoolID)} {
		ok, err := exists(ctx, s.client, key)
		if err != nil {
			return err
		}
		if !ok {
			return database.ErrNotFound
		}
	}
	return nil
}

func (s *Store) checkExternalIDFree(ctx context.Context, entity string, externalID *string, selfID int64) error {
	if externalID == nil {
		return nil
	}
	owner, err := lookupID(ctx, s.client, externalIDKey(entity, *externalID))
	if err != nil {
		return err
	}
	if owner != 0 && owner != selfID {
		return fmt.Errorf("%w: external_id %q is already in use", database.ErrValidation, *externalID)
	}
	return nil
}

func (s *Store) checkPersonRef(ctx context.Context, personID *int64) error {
	if personID == nil {
		return nil
	}
	ok, err := exists(ctx, s.client, docKey(entityPerson, *personID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: person_id %d does not reference an existing person", database.ErrValidation, *personID)
	}
	return nil
}
