package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counts returns per-entity totals in a single query
func (r *Repository) Counts(ctx context.Context) (*Counts, error) {
	var counts Counts
	err := r.db.WithContext(ctx).Raw(`SELECT
		(SELECT COUNT(*) FROM people) AS people,
		(SELECT COUNT(*) FROM schools) AS schools,
		(SELECT COUNT(*) FROM works) AS works,
		(SELECT COUNT(*) FROM quotations) AS quotations`).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}
	return &counts, nil
}

// SaveEnrichment applies one person's enrichment result atomically.
// A failure leaves the person exactly as it was before the call.
func (r *Repository) SaveEnrichment(ctx context.Context, e *Enrichment) error {
	if e.Empty() {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var person Person
		if err := tx.First(&person, e.PersonID).Error; err != nil {
			return translate(err)
		}

		updates := map[string]any{}
		if e.ImageURL != nil {
			updates["image_url"] = *e.ImageURL
		}
		if e.Biography != nil {
			updates["biography"] = *e.Biography
		}
		if len(updates) > 0 {
			if err := tx.Model(&person).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update person: %w", err)
			}
		}

		for i := range e.Works {
			work := &e.Works[i]
			work.PersonID = &person.ID
			work.Prepare()
			if err := work.Validate(); err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(work).Error; err != nil {
				return fmt.Errorf("failed to create work: %w", err)
			}
		}

		for i := range e.Quotations {
			quotation := &e.Quotations[i]
			quotation.PersonID = &person.ID
			quotation.Prepare()
			if err := quotation.Validate(); err != nil {
				return err
			}
			if err := checkExternalIDFree(tx, &Quotation{}, quotation.ExternalID, 0); err != nil {
				return err
			}
			if err := tx.Omit(clause.Associations).Create(quotation).Error; err != nil {
				return fmt.Errorf("failed to create quotation: %w", err)
			}
		}

		return nil
	})
}
