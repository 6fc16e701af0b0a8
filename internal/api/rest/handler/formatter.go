package handler

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
)

// dateLayout is the wire format of birth_date and death_date.
const dateLayout = time.DateOnly

func formatDate(d *datatypes.Date) any {
	if d == nil {
		return nil
	}
	return time.Time(*d).Format(dateLayout)
}

// parseDate reads an optional YYYY-MM-DD value. Blank means unknown.
func parseDate(field string, s *string) (*datatypes.Date, *apierrors.APIError) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, apierrors.Validation(field + " must be a date formatted YYYY-MM-DD")
	}
	d := datatypes.Date(t)
	return &d, nil
}

// formatPerson formats a person for API response, excluding search and audit columns.
func formatPerson(p *database.Person) map[string]any {
	result := map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"epoch":      p.Epoch,
		"birth_date": formatDate(p.BirthDate),
		"death_date": formatDate(p.DeathDate),
		"image_url":  p.ImageURL,
		"biography":  p.Biography,
	}
	if p.ExternalID != nil {
		result["external_id"] = *p.ExternalID
	}
	optional := map[string]string{
		"birth_year":          p.BirthYear,
		"death_year":          p.DeathYear,
		"main_school":         p.MainSchool,
		"interests":           p.Interests,
		"topical_description": p.TopicalDescription,
		"iep_link":            p.IEPLink,
		"sep_link":            p.SEPLink,
		"wiki_title":          p.WikiTitle,
	}
	for key, value := range optional {
		if value != "" {
			result[key] = value
		}
	}
	if len(p.Images) > 0 {
		result["images"] = p.Images
	}
	if len(p.LibriVoxIDs) > 0 {
		result["librivox_ids"] = p.LibriVoxIDs
	}
	if len(p.Schools) > 0 {
		schools := make([]map[string]any, len(p.Schools))
		for i := range p.Schools {
			schools[i] = map[string]any{"id": p.Schools[i].ID, "name": p.Schools[i].Name}
		}
		result["schools"] = schools
	}
	return result
}

func formatPeople(people []database.Person) []map[string]any {
	data := make([]map[string]any, len(people))
	for i := range people {
		data[i] = formatPerson(&people[i])
	}
	return data
}

// formatSchool formats a school for API response.
func formatSchool(s *database.School) map[string]any {
	return map[string]any{
		"id":          s.ID,
		"name":        s.Name,
		"image_url":   s.ImageURL,
		"description": s.Description,
	}
}

func formatSchools(schools []database.School) []map[string]any {
	data := make([]map[string]any, len(schools))
	for i := range schools {
		data[i] = formatSchool(&schools[i])
	}
	return data
}

// formatWork formats a work for API response.
func formatWork(w *database.Work) map[string]any {
	result := map[string]any{
		"id":           w.ID,
		"title":        w.Title,
		"description":  w.Description,
		"image_url":    w.ImageURL,
		"url":          w.URL,
		"is_audiobook": w.IsAudiobook,
		"is_ebook":     w.IsEbook,
		"person_id":    w.PersonID,
	}
	if w.ExternalID != nil {
		result["external_id"] = *w.ExternalID
	}
	return result
}

func formatWorks(works []database.Work) []map[string]any {
	data := make([]map[string]any, len(works))
	for i := range works {
		data[i] = formatWork(&works[i])
	}
	return data
}

// formatQuotation formats a quotation for API response.
func formatQuotation(q *database.Quotation) map[string]any {
	result := map[string]any{
		"id":          q.ID,
		"text":        q.Text,
		"source_work": q.SourceWork,
		"year":        q.Year,
		"person_id":   q.PersonID,
	}
	if q.ExternalID != nil {
		result["external_id"] = *q.ExternalID
	}
	if q.PhilosopherExternalID != nil {
		result["philosopher_external_id"] = *q.PhilosopherExternalID
	}
	return result
}

func formatQuotations(quotations []database.Quotation) []map[string]any {
	data := make([]map[string]any, len(quotations))
	for i := range quotations {
		data[i] = formatQuotation(&quotations[i])
	}
	return data
}
