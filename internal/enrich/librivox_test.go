package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

func fakeLibriVox(t *testing.T) *httptest.Server {
	t.Helper()
	books := map[string]Audiobook{
		"77":  {ID: "77", Title: "Hymn to Zeus", Description: "<p>A <em>Stoic</em> hymn.</p>", URL: "https://librivox.org/hymn-to-zeus/"},
		"123": {ID: "123", Title: "Meditations", URL: "https://librivox.org/meditations/"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feed/audiobooks/", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		book, ok := books[r.URL.Query().Get("id")]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"books": []Audiobook{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"books": []Audiobook{book}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLibriVoxAudiobook(t *testing.T) {
	srv := fakeLibriVox(t)
	lv := NewLibriVox(testFetcher(t, srv), srv.URL)

	book, err := lv.Audiobook(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "Meditations", book.Title)

	_, err = lv.Audiobook(context.Background(), "404")
	assert.Error(t, err)
}

func TestWorkResolver(t *testing.T) {
	srv := fakeLibriVox(t)
	r := NewWorkResolver(NewLibriVox(testFetcher(t, srv), srv.URL), testCatalog(t))
	ctx := context.Background()

	t.Run("librivox ids and seed works", func(t *testing.T) {
		p := &database.Person{Name: "Cleantes", LibriVoxIDs: datatypes.JSON(`["999", 77]`)}

		works := r.Resolve(ctx, p)
		require.Len(t, works, 3)

		assert.Equal(t, "Obra de Cleantes (LibriVox 999)", works[0].Title)
		assert.True(t, works[0].IsAudiobook)
		require.NotNil(t, works[0].ExternalID)
		assert.Equal(t, "999", *works[0].ExternalID)

		assert.Equal(t, "Hymn to Zeus", works[1].Title)
		assert.Equal(t, "A Stoic hymn.", works[1].Description)
		assert.Equal(t, "https://librivox.org/hymn-to-zeus/", works[1].URL)

		assert.Equal(t, "Himno a Zeus", works[2].Title)
		assert.Nil(t, works[2].ExternalID)
	})

	t.Run("placeholder when nothing is known", func(t *testing.T) {
		works := r.Resolve(ctx, &database.Person{Name: "Hipatia"})
		require.Len(t, works, 1)
		assert.Equal(t, "Obra de Hipatia", works[0].Title)
		assert.True(t, works[0].HasPlaceholderTitle(PlaceholderWorkPrefix))
	})
}

func TestWorkRepair(t *testing.T) {
	srv := fakeLibriVox(t)
	r := NewWorkResolver(NewLibriVox(testFetcher(t, srv), srv.URL), testCatalog(t))
	ctx := context.Background()

	ext := "123"
	known := &database.Work{ExternalID: &ext, Title: PlaceholderWorkTitle("Marco Aurelio", ext)}
	require.True(t, r.Repair(ctx, known, "Marco Aurelio"))
	assert.Equal(t, "Meditations", known.Title)
	assert.Equal(t, "https://librivox.org/meditations/", known.URL)

	seeded := &database.Work{Title: PlaceholderWorkTitle("Cleantes", "")}
	require.True(t, r.Repair(ctx, seeded, "Cleantes"))
	assert.Equal(t, "Himno a Zeus", seeded.Title)

	unknown := &database.Work{Title: PlaceholderWorkTitle("Hipatia", "")}
	assert.False(t, r.Repair(ctx, unknown, "Hipatia"))
	assert.Equal(t, "Obra de Hipatia", unknown.Title)
}

func TestQuoteResolver(t *testing.T) {
	c := testCatalog(t)

	quotes := NewQuoteResolver(c, true).Resolve(&database.Person{Name: "Cleanthes"})
	require.Len(t, quotes, 1)
	assert.Equal(t, "El destino guía al que lo acepta y arrastra al que lo rechaza.", quotes[0].Text)

	placeholder := NewQuoteResolver(c, true).Resolve(&database.Person{Name: "Hipatia"})
	require.Len(t, placeholder, 1)
	assert.Equal(t, "Reflexión filosófica de Hipatia", placeholder[0].Text)

	assert.Empty(t, NewQuoteResolver(c, false).Resolve(&database.Person{Name: "Hipatia"}))
}
