package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// Repository is the relational Store backed by gorm.
type Repository struct {
	db *DB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Ping checks store connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close releases the connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreatePerson inserts a new person
func (r *Repository) CreatePerson(ctx context.Context, person *Person) error {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExternalIDFree(tx, &Person{}, person.ExternalID, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(person).Error
	})
}

// UpsertPerson inserts or replaces a person, matching by external id when present, else by id
func (r *Repository) UpsertPerson(ctx context.Context, person *Person) (int64, error) {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return 0, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Person
		var err error
		switch {
		case person.ExternalID != nil:
			err = tx.Where("external_id = ?", *person.ExternalID).First(&existing).Error
		case person.ID != 0:
			err = tx.First(&existing, person.ID).Error
		default:
			return tx.Omit(clause.Associations).Create(person).Error
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			person.ID = 0
			return tx.Omit(clause.Associations).Create(person).Error
		}
		if err != nil {
			return err
		}

		person.ID = existing.ID
		person.CreatedAt = existing.CreatedAt
		return tx.Omit(clause.Associations).Save(person).Error
	})
	if err != nil {
		return 0, err
	}
	return person.ID, nil
}

// GetPerson returns a person with its schools
func (r *Repository) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var person Person
	err := r.db.WithContext(ctx).
		Preload("Schools", func(db *gorm.DB) *gorm.DB { return db.Order("schools.id ASC") }).
		First(&person, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &person, nil
}

// GetPersonByExternalID returns the person imported under the given upstream id
func (r *Repository) GetPersonByExternalID(ctx context.Context, externalID string) (*Person, error) {
	var person Person
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&person).Error; err != nil {
		return nil, translate(err)
	}
	return &person, nil
}

// ListPeople returns a page of people and the total matching count
func (r *Repository) ListPeople(ctx context.Context, filter PersonFilter, params ListParams) ([]Person, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Person{})
		if needle := params.SearchPattern(); needle != "" {
			q = q.Where(`people.search_name LIKE ? ESCAPE '\'`, containsPattern(needle))
		}
		if epoch := classifier.NormalizeEpoch(filter.Epoch); epoch != "" {
			q = q.Where("people.epoch = ?", epoch)
		}
		if filter.SchoolID != nil {
			q = q.Joins("JOIN person_schools ON person_schools.person_id = people.id").
				Where("person_schools.school_id = ?", *filter.SchoolID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count people: %w", err)
	}

	var people []Person
	err := query().
		Order(params.orderClause("people", "name")).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&people).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list people: %w", err)
	}

	return people, total, nil
}

// UpdatePerson replaces every scalar field of an existing person
func (r *Repository) UpdatePerson(ctx context.Context, person *Person) error {
	person.Prepare()
	if err := person.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Person
		if err := tx.First(&existing, person.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkExternalIDFree(tx, &Person{}, person.ExternalID, person.ID); err != nil {
			return err
		}
		person.CreatedAt = existing.CreatedAt
		return tx.Omit(clause.Associations).Save(person).Error
	})
}

// DeletePerson removes a person together with its works and quotations,
// and detaches it from every school, all in one transaction
func (r *Repository) DeletePerson(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var person Person
		if err := tx.First(&person, id).Error; err != nil {
			return translate(err)
		}

		if err := tx.Where("person_id = ?", id).Delete(&Work{}).Error; err != nil {
			return fmt.Errorf("failed to delete works: %w", err)
		}
		if err := tx.Where("person_id = ?", id).Delete(&Quotation{}).Error; err != nil {
			return fmt.Errorf("failed to delete quotations: %w", err)
		}
		if err := tx.Model(&person).Association("Schools").Clear(); err != nil {
			return fmt.Errorf("failed to detach schools: %w", err)
		}

		return tx.Delete(&person).Error
	})
}

// ListPersonSchools returns the schools linked to a person
func (r *Repository) ListPersonSchools(ctx context.Context, personID int64) ([]School, error) {
	db := r.db.WithContext(ctx)
	if err := db.Select("id").First(&Person{}, personID).Error; err != nil {
		return nil, translate(err)
	}

	var schools []School
	err := db.Joins("JOIN person_schools ON person_schools.school_id = schools.id").
		Where("person_schools.person_id = ?", personID).
		Order("schools.id ASC").
		Find(&schools).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	return schools, nil
}

// LinkPersonSchool associates a person with a school; linking twice is a no-op
func (r *Repository) LinkPersonSchool(ctx context.Context, personID, schoolID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		person, school, err := findPair(tx, personID, schoolID)
		if err != nil {
			return err
		}
		return tx.Model(person).Association("Schools").Append(school)
	})
}

// UnlinkPersonSchool removes the association, if any
func (r *Repository) UnlinkPersonSchool(ctx context.Context, personID, schoolID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		person, school, err := findPair(tx, personID, schoolID)
		if err != nil {
			return err
		}
		return tx.Model(person).Association("Schools").Delete(school)
	})
}

func findPair(tx *gorm.DB, personID, schoolID int64) (*Person, *School, error) {
	var person Person
	if err := tx.First(&person, personID).Error; err != nil {
		return nil, nil, translate(err)
	}
	var school School
	if err := tx.First(&school, schoolID).Error; err != nil {
		return nil, nil, translate(err)
	}
	return &person, &school, nil
}

// checkExternalIDFree rejects an external id already used by another row of model.
func checkExternalIDFree(tx *gorm.DB, model any, externalID *string, selfID int64) error {
	if externalID == nil {
		return nil
	}
	var count int64
	err := tx.Model(model).Where("external_id = ? AND id <> ?", *externalID, selfID).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return validationError("external_id %q is already in use", *externalID)
	}
	return nil
}

// checkPersonRef enforces the nullable-but-validated person reference of works and quotations.
func checkPersonRef(tx *gorm.DB, personID *int64) error {
	if personID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&Person{}).Where("id = ?", *personID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validationError("person_id %d does not reference an existing person", *personID)
	}
	return nil
}
