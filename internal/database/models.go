package database

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// Person represents a philosopher
type Person struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement"  json:"id"`
	ExternalID         *string         `gorm:"uniqueIndex"               json:"external_id,omitempty"`
	Name               string          `gorm:"not null;index"            json:"name"`
	SearchName         string          `gorm:"index"                     json:"-"`
	Epoch              string          `gorm:"index"                     json:"epoch,omitempty"`
	BirthDate          *datatypes.Date `                                 json:"birth_date,omitempty"`
	DeathDate          *datatypes.Date `                                 json:"death_date,omitempty"`
	BirthYear          string          `                                 json:"birth_year,omitempty"`
	DeathYear          string          `                                 json:"death_year,omitempty"`
	ImageURL           string          `                                 json:"image_url,omitempty"`
	Biography          string          `                                 json:"biography,omitempty"`
	MainSchool         string          `                                 json:"main_school,omitempty"`
	Interests          string          `                                 json:"interests,omitempty"`
	TopicalDescription string          `                                 json:"topical_description,omitempty"`
	IEPLink            string          `gorm:"column:iep_link"           json:"iep_link,omitempty"`
	SEPLink            string          `gorm:"column:sep_link"           json:"sep_link,omitempty"`
	WikiTitle          string          `                                 json:"wiki_title,omitempty"`
	Images             datatypes.JSON  `                                 json:"images,omitempty"`
	LibriVoxIDs        datatypes.JSON  `gorm:"column:librivox_ids"       json:"librivox_ids,omitempty"`
	Schools            []School        `gorm:"many2many:person_schools;" json:"schools,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime"            json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime"            json:"updated_at"`
}

// TableName specifies the table name for Person
func (Person) TableName() string {
	return "people"
}

// School represents a philosophical tradition
type School struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null;uniqueIndex"      json:"name"`
	SearchName  string    `gorm:"index"                     json:"-"`
	ImageURL    string    `                                 json:"image_url,omitempty"`
	Description string    `                                 json:"description,omitempty"`
	People      []Person  `gorm:"many2many:person_schools;" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime"            json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"            json:"updated_at"`
}

// TableName specifies the table name for School
func (School) TableName() string {
	return "schools"
}

// Work represents a book or audiobook attributed to a Person
type Work struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  *string   `gorm:"index"                    json:"external_id,omitempty"` // LibriVox id
	Title       string    `gorm:"not null"                 json:"title"`
	SearchTitle string    `gorm:"index"                    json:"-"`
	Description string    `                                json:"description,omitempty"`
	ImageURL    string    `                                json:"image_url,omitempty"`
	URL         string    `                                json:"url,omitempty"`
	IsAudiobook bool      `                                json:"is_audiobook"`
	IsEbook     bool      `                                json:"is_ebook"`
	PersonID    *int64    `gorm:"index"                    json:"person_id,omitempty"`
	Person      *Person   `gorm:"foreignKey:PersonID"      json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime"           json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"           json:"updated_at"`
}

// TableName specifies the table name for Work
func (Work) TableName() string {
	return "works"
}

// Quotation represents a quote attributed to a Person
type Quotation struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID            *string   `gorm:"uniqueIndex"              json:"external_id,omitempty"`
	Text                  string    `gorm:"not null"                 json:"text"`
	SearchText            string    `gorm:"index"                    json:"-"`
	SourceWork            string    `                                json:"source_work,omitempty"`
	Year                  string    `                                json:"year,omitempty"`
	PersonID              *int64    `gorm:"index"                    json:"person_id,omitempty"`
	Person                *Person   `gorm:"foreignKey:PersonID"      json:"-"`
	PhilosopherExternalID *string   `                                json:"philosopher_external_id,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime"           json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"           json:"updated_at"`
}

// TableName specifies the table name for Quotation
func (Quotation) TableName() string {
	return "quotations"
}

// Counts holds per-entity totals
type Counts struct {
	People     int64 `json:"people"`
	Schools    int64 `json:"schools"`
	Works      int64 `json:"works"`
	Quotations int64 `json:"quotations"`
}

// Prepare normalizes fields and refreshes derived columns before a write.
func (p *Person) Prepare() {
	p.Name = classifier.NormalizeText(p.Name)
	p.SearchName = classifier.SearchKey(p.Name)
	if p.Epoch != "" {
		p.Epoch = classifier.NormalizeEpoch(p.Epoch)
	}
	p.ExternalID = classifier.NormalizePointer(p.ExternalID)
}

// Validate checks the record-level invariants of a Person.
func (p *Person) Validate() error {
	if p.Name == "" {
		return validationError("name is required")
	}
	for _, d := range []*datatypes.Date{p.BirthDate, p.DeathDate} {
		if d != nil && (time.Time(*d).Year() < 1 || time.Time(*d).Year() > 9999) {
			return validationError("dates must fall within years 1 to 9999; use birth_year/death_year for older labels")
		}
	}
	if p.BirthDate != nil && p.DeathDate != nil &&
		time.Time(*p.DeathDate).Before(time.Time(*p.BirthDate)) {
		return validationError("birth_date must not be after death_date")
	}
	return nil
}

// Prepare normalizes fields and refreshes derived columns before a write.
func (s *School) Prepare() {
	s.Name = classifier.NormalizeText(s.Name)
	s.SearchName = classifier.SearchKey(s.Name)
}

// Validate checks the record-level invariants of a School.
func (s *School) Validate() error {
	if s.Name == "" {
		return validationError("name is required")
	}
	return nil
}

// Prepare normalizes fields and refreshes derived columns before a write.
func (w *Work) Prepare() {
	w.Title = classifier.NormalizeText(w.Title)
	w.SearchTitle = classifier.SearchKey(w.Title)
	w.ExternalID = classifier.NormalizePointer(w.ExternalID)
}

// Validate checks the record-level invariants of a Work.
func (w *Work) Validate() error {
	if w.Title == "" {
		return validationError("title is required")
	}
	return nil
}

// HasPlaceholderTitle reports whether the title still carries the generic prefix.
func (w *Work) HasPlaceholderTitle(prefix string) bool {
	return prefix != "" && strings.HasPrefix(w.Title, prefix)
}

// Prepare normalizes fields and refreshes derived columns before a write.
func (q *Quotation) Prepare() {
	q.Text = strings.TrimSpace(q.Text)
	q.SearchText = classifier.SearchKey(q.Text)
	q.ExternalID = classifier.NormalizePointer(q.ExternalID)
}

// Validate checks the record-level invariants of a Quotation.
func (q *Quotation) Validate() error {
	if q.Text == "" {
		return validationError("text is required")
	}
	return nil
}
