package loader

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

//go:embed data/catalog.json
var defaultCatalog []byte

// Catalog is the curated seed asset: schools, people, alias tables and
// biography templates. People are keyed by a stable identifier, not by
// display name.
type Catalog struct {
	Schools       []SchoolData        `json:"schools"`
	People        []PersonData        `json:"people"`
	SchoolAliases map[string][]string `json:"school_aliases"`
	Templates     map[string]string   `json:"templates"`

	byKey        map[string]*PersonData
	byExternalID map[string]*PersonData
}

// SchoolData represents a school from JSON
type SchoolData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PersonData represents a philosopher from JSON
type PersonData struct {
	Key         string     `json:"key"`
	ExternalID  string     `json:"external_id,omitempty"`
	Name        string     `json:"name"`
	Epoch       string     `json:"epoch,omitempty"`
	BirthDate   string     `json:"birth_date,omitempty"` // YYYY-MM-DD, years 1..9999 only
	DeathDate   string     `json:"death_date,omitempty"`
	BirthYear   string     `json:"birth_year,omitempty"`
	DeathYear   string     `json:"death_year,omitempty"`
	Schools     []string   `json:"schools,omitempty"`
	Aliases     []string   `json:"aliases,omitempty"`
	Interests   string     `json:"interests,omitempty"`
	Biography   string     `json:"biography,omitempty"`
	LibriVoxIDs []string   `json:"librivox_ids,omitempty"`
	Works       []WorkData `json:"works,omitempty"`
	Quotations  []string   `json:"quotations,omitempty"`
}

// WorkData represents a curated work title
type WorkData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and indexes a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	c.byKey = make(map[string]*PersonData, len(c.People)*2)
	c.byExternalID = make(map[string]*PersonData)

	for i := range c.People {
		p := &c.People[i]
		if p.Name == "" {
			return nil, fmt.Errorf("seed person %d has no name", i)
		}
		if p.Key == "" {
			p.Key = classifier.StableKey(p.Name)
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate seed key %q", p.Key)
		}
		c.byKey[p.Key] = p
		if p.ExternalID != "" {
			c.byExternalID[p.ExternalID] = p
		}
	}

	// aliases resolve only where they do not shadow a canonical key
	for i := range c.People {
		p := &c.People[i]
		for _, alias := range p.Aliases {
			k := classifier.StableKey(alias)
			if _, taken := c.byKey[k]; !taken {
				c.byKey[k] = p
			}
		}
	}

	return &c, nil
}

// Lookup finds a seed entry by external id, then by the stable key of name.
// Aliases are matched through the same key space.
func (c *Catalog) Lookup(externalID, name string) (*PersonData, bool) {
	if externalID != "" {
		if p, ok := c.byExternalID[externalID]; ok {
			return p, true
		}
	}
	p, ok := c.byKey[classifier.StableKey(name)]
	return p, ok
}

// PersonAliases returns display name → alternate spellings for every seeded person.
func (c *Catalog) PersonAliases() map[string][]string {
	out := make(map[string][]string, len(c.People))
	for _, p := range c.People {
		if len(p.Aliases) > 0 {
			out[p.Name] = p.Aliases
		}
	}
	return out
}

// Template returns the generic biography template for a category, if any.
func (c *Catalog) Template(category classifier.Category) (string, bool) {
	t, ok := c.Templates[string(category)]
	return t, ok && t != ""
}

func parseDate(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	d := datatypes.Date(t)
	return &d, nil
}
