package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateQuotation inserts a quotation; a non-nil person_id must reference an existing person
func (r *Repository) CreateQuotation(ctx context.Context, quotation *Quotation) error {
	quotation.Prepare()
	if err := quotation.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkPersonRef(tx, quotation.PersonID); err != nil {
			return err
		}
		if err := checkExternalIDFree(tx, &Quotation{}, quotation.ExternalID, 0); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(quotation).Error
	})
}

// GetQuotation returns a quotation by id
func (r *Repository) GetQuotation(ctx context.Context, id int64) (*Quotation, error) {
	var quotation Quotation
	if err := r.db.WithContext(ctx).First(&quotation, id).Error; err != nil {
		return nil, translate(err)
	}
	return &quotation, nil
}

// ListQuotations returns a page of quotations and the total matching count
func (r *Repository) ListQuotations(ctx context.Context, filter QuotationFilter, params ListParams) ([]Quotation, int64, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}

	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Quotation{})
		if needle := params.SearchPattern(); needle != "" {
			q = q.Where(`quotations.search_text LIKE ? ESCAPE '\'`, containsPattern(needle))
		}
		if filter.PersonID != nil {
			q = q.Where("quotations.person_id = ?", *filter.PersonID)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotations: %w", err)
	}

	var quotations []Quotation
	err := query().
		Order(params.orderClause("quotations", "text")).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&quotations).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}

	return quotations, total, nil
}

// RandomQuotations returns k distinct quotations chosen uniformly at random,
// or every quotation when fewer than k exist
func (r *Repository) RandomQuotations(ctx context.Context, k int) ([]Quotation, error) {
	if k < 1 || k > MaxLimit {
		return nil, validationError("limit must be between 1 and %d", MaxLimit)
	}

	var quotations []Quotation
	if err := r.db.WithContext(ctx).Order("RANDOM()").Limit(k).Find(&quotations).Error; err != nil {
		return nil, fmt.Errorf("failed to sample quotations: %w", err)
	}
	return quotations, nil
}

// UpdateQuotation replaces the fields of an existing quotation
func (r *Repository) UpdateQuotation(ctx context.Context, quotation *Quotation) error {
	quotation.Prepare()
	if err := quotation.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Quotation
		if err := tx.First(&existing, quotation.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkPersonRef(tx, quotation.PersonID); err != nil {
			return err
		}
		if err := checkExternalIDFree(tx, &Quotation{}, quotation.ExternalID, quotation.ID); err != nil {
			return err
		}
		quotation.CreatedAt = existing.CreatedAt
		return tx.Omit(clause.Associations).Save(quotation).Error
	})
}

// DeleteQuotation removes a quotation
func (r *Repository) DeleteQuotation(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&Quotation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
