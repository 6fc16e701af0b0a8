package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoImage is returned when a source has no usable image for a title.
var ErrNoImage = errors.New("no image found")

const (
	thumbnailSize       = 512
	disambiguationPeek  = 5
	disambiguationLinks = 50
)

var philosophyKeywords = []string{"filósofo", "filosofo", "philosopher"}

// Wikipedia looks up page images on one or more Wikipedia hosts, tried in order.
type Wikipedia struct {
	fetcher *Fetcher
	hosts   []string
}

// NewWikipedia returns a client for the given hosts, e.g. https://es.wikipedia.org.
func NewWikipedia(fetcher *Fetcher, hosts []string) *Wikipedia {
	return &Wikipedia{fetcher: fetcher, hosts: hosts}
}

type wikiQueryResponse struct {
	Query struct {
		Pages []wikiPage `json:"pages"`
	} `json:"query"`
}

type wikiPage struct {
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Invalid   bool   `json:"invalid"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	PageProps map[string]string `json:"pageprops"`
	Links     []struct {
		Title string `json:"title"`
	} `json:"links"`
}

func (p wikiPage) isDisambiguation() bool {
	_, ok := p.PageProps["disambiguation"]
	return ok
}

type wikiParseResponse struct {
	Parse struct {
		Text string `json:"text"`
	} `json:"parse"`
}

// FindImage returns the main image URL for title. Disambiguation pages are
// resolved to their most philosophy-related candidate.
func (w *Wikipedia) FindImage(ctx context.Context, title string) (string, error) {
	var errs []error
	for _, host := range w.hosts {
		img, err := w.findOnHost(ctx, host, title)
		if err == nil && img != "" {
			return img, nil
		}
		if err != nil && !errors.Is(err, ErrNoImage) {
			errs = append(errs, fmt.Errorf("%s: %w", host, err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", ErrNoImage
}

func (w *Wikipedia) findOnHost(ctx context.Context, host, title string) (string, error) {
	page, err := w.pageInfo(ctx, host, title)
	if err != nil {
		return "", err
	}

	if page.isDisambiguation() {
		candidate, err := w.disambiguate(ctx, host, page.Title)
		if err != nil {
			return "", err
		}
		if page, err = w.pageInfo(ctx, host, candidate); err != nil {
			return "", err
		}
	}

	if page.Thumbnail != nil && page.Thumbnail.Source != "" {
		return page.Thumbnail.Source, nil
	}

	html, err := w.PageHTML(ctx, host, page.Title)
	if err != nil {
		return "", err
	}
	if img := ExtractMainImage(html, host); img != "" {
		return img, nil
	}
	return "", ErrNoImage
}

func (w *Wikipedia) pageInfo(ctx context.Context, host, title string) (*wikiPage, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "pageimages|pageprops")
	q.Set("piprop", "thumbnail")
	q.Set("pithumbsize", fmt.Sprint(thumbnailSize))
	q.Set("redirects", "1")
	q.Set("titles", title)
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var resp wikiQueryResponse
	if err := w.fetcher.GetJSON(ctx, apiURL(host, q), &resp); err != nil {
		return nil, err
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing || resp.Query.Pages[0].Invalid {
		return nil, ErrNoImage
	}
	return &resp.Query.Pages[0], nil
}

func (w *Wikipedia) disambiguate(ctx context.Context, host, title string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "links")
	q.Set("pllimit", fmt.Sprint(disambiguationLinks))
	q.Set("plnamespace", "0")
	q.Set("titles", title)
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var resp wikiQueryResponse
	if err := w.fetcher.GetJSON(ctx, apiURL(host, q), &resp); err != nil {
		return "", err
	}
	if len(resp.Query.Pages) == 0 {
		return "", ErrNoImage
	}

	candidates := make([]string, 0, len(resp.Query.Pages[0].Links))
	for _, l := range resp.Query.Pages[0].Links {
		candidates = append(candidates, l.Title)
	}
	if c := pickCandidate(candidates); c != "" {
		return c, nil
	}
	return "", ErrNoImage
}

// pickCandidate prefers, among the first few candidates, one whose title
// names a philosopher; otherwise it takes the first.
func pickCandidate(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates[:min(len(candidates), disambiguationPeek)] {
		lower := strings.ToLower(c)
		for _, kw := range philosophyKeywords {
			if strings.Contains(lower, kw) {
				return c
			}
		}
	}
	return candidates[0]
}

// PageHTML returns the rendered body HTML of a page.
func (w *Wikipedia) PageHTML(ctx context.Context, host, title string) (string, error) {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("page", title)
	q.Set("prop", "text")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("formatversion", "2")

	var resp wikiParseResponse
	if err := w.fetcher.GetJSON(ctx, apiURL(host, q), &resp); err != nil {
		return "", err
	}
	return resp.Parse.Text, nil
}

func apiURL(host string, q url.Values) string {
	return joinURL(host, "/w/api.php") + "?" + q.Encode()
}
