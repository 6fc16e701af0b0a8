package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// CreateSchool inserts a new school; names must be unique
func (s *Store) CreateSchool(ctx context.Context, school *database.School) error {
	school.Prepare()
	if err := school.Validate(); err != nil {
		return err
	}
	if err := s.checkSchoolNameFree(ctx, school.Name, 0); err != nil {
		return err
	}

	id, err := s.nextID(ctx, entitySchool)
	if err != nil {
		return err
	}
	school.ID = id
	school.CreatedAt = s.now()
	school.UpdatedAt = school.CreatedAt

	return s.writeSchool(ctx, school, "")
}

// GetOrCreateSchool returns the id of the school with this name, creating it if needed
func (s *Store) GetOrCreateSchool(ctx context.Context, name string) (int64, error) {
	school := &database.School{Name: name}
	school.Prepare()
	if err := school.Validate(); err != nil {
		return 0, err
	}

	id, err := lookupID(ctx, s.client, schoolNameKey(school.Name))
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}

	if err := s.CreateSchool(ctx, school); err != nil {
		return 0, err
	}
	return school.ID, nil
}

// GetSchool returns a school by id
func (s *Store) GetSchool(ctx context.Context, id int64) (*database.School, error) {
	return getDoc[database.School](ctx, s.client, entitySchool, id)
}

// ListSchools returns a page of schools and the total matching count
func (s *Store) ListSchools(ctx context.Context, params database.ListParams) ([]database.School, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	schools, err := allDocs[database.School](ctx, s.client, entitySchool)
	if err != nil {
		return nil, 0, err
	}

	result, total := page(schools, params,
		func(sc *database.School) int64 { return sc.ID },
		func(sc *database.School) string { return sc.Name },
		nil,
	)
	return result, total, nil
}

// UpdateSchool replaces the fields of an existing school
func (s *Store) UpdateSchool(ctx context.Context, school *database.School) error {
	school.Prepare()
	if err := school.Validate(); err != nil {
		return err
	}

	existing, err := getDoc[database.School](ctx, s.client, entitySchool, school.ID)
	if err != nil {
		return err
	}
	if err := s.checkSchoolNameFree(ctx, school.Name, school.ID); err != nil {
		return err
	}

	school.CreatedAt = existing.CreatedAt
	school.UpdatedAt = s.now()
	return s.writeSchool(ctx, school, existing.Name)
}

func (s *Store) writeSchool(ctx context.Context, school *database.School, previousName string) error {
	doc := *school
	doc.People = nil
	payload, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode school: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(entitySchool, school.ID), payload, 0)
		pipe.ZAdd(ctx, indexKey(entitySchool), redis.Z{Score: float64(school.ID), Member: school.ID})
		if previousName != "" && schoolNameKey(previousName) != schoolNameKey(school.Name) {
			pipe.Del(ctx, schoolNameKey(previousName))
		}
		pipe.Set(ctx, schoolNameKey(school.Name), school.ID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write school: %w", err)
	}
	return nil
}

// DeleteSchool detaches every linked person and removes the school; people are kept
func (s *Store) DeleteSchool(ctx context.Context, id int64) error {
	school, err := getDoc[database.School](ctx, s.client, entitySchool, id)
	if err != nil {
		return err
	}
	personIDs, err := setIDs(ctx, s.client, schoolPeopleKey(id))
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, pid := range personIDs {
			pipe.SRem(ctx, personSchoolsKey(pid), id)
		}
		pipe.Del(ctx, schoolPeopleKey(id), docKey(entitySchool, id), schoolNameKey(school.Name))
		pipe.ZRem(ctx, indexKey(entitySchool), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}
	return nil
}

func (s *Store) checkSchoolNameFree(ctx context.Context, name string, selfID int64) error {
	owner, err := lookupID(ctx, s.client, schoolNameKey(name))
	if err != nil {
		return err
	}
	if owner != 0 && owner != selfID {
		return fmt.Errorf("%w: school %q already exists", database.ErrValidation, name)
	}
	return nil
}
