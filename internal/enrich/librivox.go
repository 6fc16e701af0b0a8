package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
)

// PlaceholderWorkPrefix starts every generated work title.
const PlaceholderWorkPrefix = "Obra de "

// Audiobook is one LibriVox catalog entry.
type Audiobook struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url_librivox"`
}

// LibriVox reads the public audiobook feed.
type LibriVox struct {
	fetcher *Fetcher
	base    string
}

// NewLibriVox returns a feed client rooted at base, e.g. https://librivox.org.
func NewLibriVox(fetcher *Fetcher, base string) *LibriVox {
	return &LibriVox{fetcher: fetcher, base: base}
}

// Audiobook fetches a single audiobook by id.
func (l *LibriVox) Audiobook(ctx context.Context, id string) (*Audiobook, error) {
	q := url.Values{}
	q.Set("id", id)
	q.Set("format", "json")

	var resp struct {
		Books []Audiobook `json:"books"`
	}
	if err := l.fetcher.GetJSON(ctx, joinURL(l.base, "/api/feed/audiobooks/")+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Books) == 0 || strings.TrimSpace(resp.Books[0].Title) == "" {
		return nil, fmt.Errorf("librivox %s: no book", id)
	}
	return &resp.Books[0], nil
}

// PlaceholderWorkTitle is the generic title given to an unresolved work.
func PlaceholderWorkTitle(name, librivoxID string) string {
	if librivoxID == "" {
		return PlaceholderWorkPrefix + name
	}
	return fmt.Sprintf("%s%s (LibriVox %s)", PlaceholderWorkPrefix, name, librivoxID)
}

// WorkResolver produces the works of a person from LibriVox ids and the
// seed catalog, with a placeholder when nothing else is known.
type WorkResolver struct {
	librivox *LibriVox
	catalog  *loader.Catalog
}

// NewWorkResolver returns a resolver. Either argument may be nil.
func NewWorkResolver(librivox *LibriVox, catalog *loader.Catalog) *WorkResolver {
	return &WorkResolver{librivox: librivox, catalog: catalog}
}

// Resolve returns unsaved works for p. It never returns an empty slice.
func (r *WorkResolver) Resolve(ctx context.Context, p *database.Person) []database.Work {
	var seed *loader.PersonData
	if r.catalog != nil {
		ext := ""
		if p.ExternalID != nil {
			ext = *p.ExternalID
		}
		seed, _ = r.catalog.Lookup(ext, p.Name)
	}

	ids := librivoxIDs(p)
	if seed != nil {
		ids = appendUnique(ids, seed.LibriVoxIDs...)
	}

	var works []database.Work
	for _, id := range ids {
		works = append(works, r.audiobookWork(ctx, p.Name, id))
	}

	if seed != nil {
		for _, w := range seed.Works {
			works = append(works, database.Work{Title: w.Title, Description: w.Description})
		}
	}

	if len(works) == 0 {
		works = append(works, database.Work{Title: PlaceholderWorkTitle(p.Name, "")})
	}
	return works
}

func (r *WorkResolver) audiobookWork(ctx context.Context, name, id string) database.Work {
	ext := id
	work := database.Work{
		ExternalID:  &ext,
		Title:       PlaceholderWorkTitle(name, id),
		Description: "Audiolibro disponible en LibriVox - ID: " + id,
		IsAudiobook: true,
	}
	if r.librivox == nil {
		return work
	}

	book, err := r.librivox.Audiobook(ctx, id)
	if err != nil {
		logger.Warn("LibriVox lookup failed",
			zap.String("person", name),
			zap.String("step", "works"),
			zap.String("librivox_id", id),
			zap.Error(err),
		)
		return work
	}

	work.Title = classifier.NormalizeText(book.Title)
	work.URL = book.URL
	if d := stripTags(book.Description); d != "" {
		work.Description = d
	}
	return work
}

// Repair tries to replace the placeholder title of w. It returns false when
// no better title is known.
func (r *WorkResolver) Repair(ctx context.Context, w *database.Work, ownerName string) bool {
	if w.ExternalID != nil && r.librivox != nil {
		book, err := r.librivox.Audiobook(ctx, *w.ExternalID)
		if err == nil {
			w.Title = classifier.NormalizeText(book.Title)
			if w.URL == "" {
				w.URL = book.URL
			}
			return true
		}
		logger.Warn("LibriVox lookup failed",
			zap.Int64("work_id", w.ID),
			zap.String("step", "repair"),
			zap.Error(err),
		)
	}

	if r.catalog == nil || ownerName == "" {
		return false
	}
	seed, ok := r.catalog.Lookup("", ownerName)
	if !ok || len(seed.Works) == 0 {
		return false
	}
	w.Title = seed.Works[0].Title
	if w.Description == "" {
		w.Description = seed.Works[0].Description
	}
	return true
}

func librivoxIDs(p *database.Person) []string {
	if len(p.LibriVoxIDs) == 0 {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(p.LibriVoxIDs, &raw); err != nil {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			ids = appendUnique(ids, strings.TrimSpace(s))
			continue
		}
		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			ids = appendUnique(ids, n.String())
		}
	}
	return ids
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, d := range dst {
			if d == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

// stripTags reduces an HTML fragment to its text.
func stripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return classifier.NormalizeText(fragment)
	}
	return cleanText(textOf(fragment))
}
