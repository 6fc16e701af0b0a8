package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// CreateSchool inserts a new school; names must be unique
func (r *Repository) CreateSchool(ctx context.Context, school *School) error {
	school.Prepare()
	if err := school.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSchoolNameFree(tx, school.Name, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(school).Error
	})
}

// GetOrCreateSchool gets or creates a school by name in a thread-safe manner
// Uses ON CONFLICT to handle concurrent inserts gracefully
func (r *Repository) GetOrCreateSchool(ctx context.Context, name string) (int64, error) {
	school := School{Name: name}
	school.Prepare()
	if err := school.Validate(); err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)

	var existing School
	if err := db.Select("id").Where("search_name = ?", school.SearchName).Limit(1).Find(&existing).Error; err != nil {
		return 0, err
	}
	if existing.ID != 0 {
		return existing.ID, nil
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&school).Error
	if err != nil {
		return 0, err
	}

	// ID stays 0 when the insert was skipped
	if school.ID == 0 {
		if err := db.Where("name = ?", school.Name).First(&school).Error; err != nil {
			return 0, translate(err)
		}
	}

	return school.ID, nil
}

// GetSchool returns a school by id
func (r *Repository) GetSchool(ctx context.Context, id int64) (*School, error) {
	var school School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		return nil, translate(err)
	}
	return &school, nil
}

// ListSchools returns a page of schools and the total matching count
func (r *Repository) ListSchools(ctx context.Context, params ListParams) ([]School, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&School{})
		if needle := params.SearchPattern(); needle != "" {
			q = q.Where(`schools.search_name LIKE ? ESCAPE '\'`, containsPattern(needle))
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count schools: %w", err)
	}

	var schools []School
	err := query().
		Order(params.orderClause("schools", "name")).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&schools).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schools: %w", err)
	}

	return schools, total, nil
}

// UpdateSchool replaces the fields of an existing school
func (r *Repository) UpdateSchool(ctx context.Context, school *School) error {
	school.Prepare()
	if err := school.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing School
		if err := tx.First(&existing, school.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkSchoolNameFree(tx, school.Name, school.ID); err != nil {
			return err
		}
		school.CreatedAt = existing.CreatedAt
		return tx.Omit(clause.Associations).Save(school).Error
	})
}

// DeleteSchool detaches every linked person and removes the school; people are kept
func (r *Repository) DeleteSchool(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var school School
		if err := tx.First(&school, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&school).Association("People").Clear(); err != nil {
			return fmt.Errorf("failed to detach people: %w", err)
		}
		return tx.Delete(&school).Error
	})
}

func checkSchoolNameFree(tx *gorm.DB, name string, selfID int64) error {
	var count int64
	err := tx.Model(&School{}).
		Where("search_name = ? AND id <> ?", classifier.SearchKey(name), selfID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return validationError("school %q already exists", name)
	}
	return nil
}
