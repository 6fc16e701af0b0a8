package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateWork inserts a work; a non-nil person_id must reference an existing person
func (r *Repository) CreateWork(ctx context.Context, work *Work) error {
	work.Prepare()
	if err := work.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkPersonRef(tx, work.PersonID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(work).Error
	})
}

// GetWork returns a work by id
func (r *Repository) GetWork(ctx context.Context, id int64) (*Work, error) {
	var work Work
	if err := r.db.WithContext(ctx).First(&work, id).Error; err != nil {
		return nil, translate(err)
	}
	return &work, nil
}

// ListWorks returns a page of works and the total matching count
func (r *Repository) ListWorks(ctx context.Context, filter WorkFilter, params ListParams) ([]Work, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Work{})
		if needle := params.SearchPattern(); needle != "" {
			q = q.Where(`works.search_title LIKE ? ESCAPE '\'`, containsPattern(needle))
		}
		if filter.PersonID != nil {
			q = q.Where("works.person_id = ?", *filter.PersonID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count works: %w", err)
	}

	var works []Work
	err := query().
		Order(params.orderClause("works", "title")).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&works).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list works: %w", err)
	}

	return works, total, nil
}

// ListPlaceholderWorks returns every work whose title starts with prefix, in id order
func (r *Repository) ListPlaceholderWorks(ctx context.Context, prefix string) ([]Work, error) {
	var works []Work
	err := r.db.WithContext(ctx).
		Where(`title LIKE ? ESCAPE '\'`, prefixPattern(prefix)).
		Order("id ASC").
		Find(&works).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list placeholder works: %w", err)
	}

	// LIKE is case-insensitive in SQLite; keep only exact prefix matches
	matched := works[:0]
	for _, w := range works {
		if w.HasPlaceholderTitle(prefix) {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

// UpdateWork replaces the fields of an existing work
func (r *Repository) UpdateWork(ctx context.Context, work *Work) error {
	work.Prepare()
	if err := work.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Work
		if err := tx.First(&existing, work.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkPersonRef(tx, work.PersonID); err != nil {
			return err
		}
		work.CreatedAt = existing.CreatedAt
		return tx.Omit(clause.Associations).Save(work).Error
	})
}

// DeleteWork removes a work
func (r *Repository) DeleteWork(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&Work{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
