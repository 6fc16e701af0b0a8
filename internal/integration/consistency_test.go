package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/philosophy-catalog-api/internal/api/rest"
	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/testutil"
)

// seededStore returns a store of the given backend holding the embedded catalog.
func seededStore(t *testing.T, backend testutil.Backend) database.Store {
	t.Helper()

	store := backend.Setup(t)
	catalog, err := loader.Default()
	require.NoError(t, err)
	_, err = loader.Seed(context.Background(), store, catalog)
	require.NoError(t, err)
	return store
}

func get(t *testing.T, router http.Handler, path string) map[string]any {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code, "GET %s: %s", path, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// TestBackendsServeTheSameCatalog seeds both stores identically and checks
// that the REST API cannot tell them apart.
func TestBackendsServeTheSameCatalog(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}

	backends := testutil.Backends()
	routers := make([]*gin.Engine, len(backends))
	for i, backend := range backends {
		routers[i] = rest.SetupRouter(cfg, seededStore(t, backend))
	}

	paths := []string{
		"/stats",
		"/people?limit=100",
		"/people?limit=100&sort=-name",
		"/people?q=de&sort=name",
		"/people?limit=5&offset=10&sort=-id",
		"/people?epoch=Antigua&limit=100",
		"/people/1",
		"/people/1/schools",
		"/schools?limit=100&sort=name",
		"/schools?q=ismo",
		"/schools/1/people?sort=-name",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			want := get(t, routers[0], path)
			for i := 1; i < len(routers); i++ {
				assert.Equal(t, want, get(t, routers[i], path), "backend %s", backends[i].Name)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := backend.Setup(t)
			ctx := context.Background()

			ext := "ph-kant"
			birth, death := mustDate(t, "1724-04-22"), mustDate(t, "1804-02-12")
			created := &database.Person{
				ExternalID: &ext,
				Name:       "Immanuel Kant",
				Epoch:      "Moderna",
				BirthDate:  birth,
				DeathDate:  death,
				ImageURL:   "https://example.org/kant.jpg",
				Biography:  "Filósofo de Königsberg.",
				Interests:  "Epistemología, Ética",
			}
			require.NoError(t, store.CreatePerson(ctx, created))

			got, err := store.GetPerson(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, ext, *got.ExternalID)
			assert.Equal(t, created.Name, got.Name)
			assert.Equal(t, created.Epoch, got.Epoch)
			assert.Equal(t, created.ImageURL, got.ImageURL)
			assert.Equal(t, created.Biography, got.Biography)
			assert.Equal(t, created.Interests, got.Interests)
			assert.Equal(t, "1724-04-22", formatDate(got.BirthDate))
			assert.Equal(t, "1804-02-12", formatDate(got.DeathDate))
		})
	}
}

// Scenario: a bare person can own works and quotations.
func TestBarePersonOwnsRecords(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := backend.Setup(t)
			router := rest.SetupRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}, store)
			ctx := context.Background()

			hypatia := testutil.MustCreatePerson(t, store, "Hypatia")
			require.NoError(t, store.CreateWork(ctx, &database.Work{Title: "Comentario a la Aritmética", PersonID: &hypatia.ID}))
			quotation := &database.Quotation{Text: "Defiende tu derecho a pensar.", PersonID: &hypatia.ID}
			require.NoError(t, store.CreateQuotation(ctx, quotation))

			body := get(t, router, fmt.Sprintf("/people/%d/quotations", hypatia.ID))
			data := body["data"].([]any)
			require.Len(t, data, 1)
			assert.Equal(t, float64(quotation.ID), data[0].(map[string]any)["id"])
			assert.Equal(t, "Defiende tu derecho a pensar.", data[0].(map[string]any)["text"])
		})
	}
}

func TestDeletePersonCascades(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := seededStore(t, backend)
			ctx := context.Background()

			people, _, err := store.ListPeople(ctx, database.PersonFilter{}, database.ListParams{Search: "Séneca", Limit: 1})
			require.NoError(t, err)
			require.Len(t, people, 1)
			seneca := people[0]

			schools, err := store.ListPersonSchools(ctx, seneca.ID)
			require.NoError(t, err)
			require.NotEmpty(t, schools)

			for _, title := range []string{"Cartas a Lucilio", "De la brevedad de la vida"} {
				require.NoError(t, store.CreateWork(ctx, &database.Work{Title: title, PersonID: &seneca.ID}))
			}
			for _, text := range []string{"Uno", "Dos", "Tres"} {
				require.NoError(t, store.CreateQuotation(ctx, &database.Quotation{Text: text, PersonID: &seneca.ID}))
			}
			// unrelated rows survive
			other := testutil.MustCreatePerson(t, store, "Lucilio")
			require.NoError(t, store.CreateWork(ctx, &database.Work{Title: "Epístolas", PersonID: &other.ID}))

			before, err := store.Counts(ctx)
			require.NoError(t, err)

			require.NoError(t, store.DeletePerson(ctx, seneca.ID))

			after, err := store.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.People-1, after.People)
			assert.Equal(t, before.Works-2, after.Works)
			assert.Equal(t, before.Quotations-3, after.Quotations)
			assert.Equal(t, before.Schools, after.Schools)

			for _, school := range schools {
				_, err := store.GetSchool(ctx, school.ID)
				require.NoError(t, err)
				members, _, err := store.ListPeople(ctx, database.PersonFilter{SchoolID: &school.ID}, database.ListParams{Limit: database.MaxLimit})
				require.NoError(t, err)
				for _, m := range members {
					assert.NotEqual(t, seneca.ID, m.ID)
				}
			}
		})
	}
}

func TestDeleteSchoolDetaches(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := seededStore(t, backend)
			ctx := context.Background()

			schools, _, err := store.ListSchools(ctx, database.ListParams{Search: "Estoicismo", Limit: 1})
			require.NoError(t, err)
			require.Len(t, schools, 1)
			stoa := schools[0]

			members, _, err := store.ListPeople(ctx, database.PersonFilter{SchoolID: &stoa.ID}, database.ListParams{Limit: database.MaxLimit})
			require.NoError(t, err)
			require.NotEmpty(t, members)

			before, err := store.Counts(ctx)
			require.NoError(t, err)

			require.NoError(t, store.DeleteSchool(ctx, stoa.ID))

			after, err := store.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.People, after.People)
			assert.Equal(t, before.Schools-1, after.Schools)

			for _, m := range members {
				got, err := store.GetPerson(ctx, m.ID)
				require.NoError(t, err)
				assert.Equal(t, m.Name, got.Name)
				for _, s := range got.Schools {
					assert.NotEqual(t, stoa.ID, s.ID)
				}
			}
		})
	}
}

func TestSearchFindsEverySubstring(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := seededStore(t, backend)
			ctx := context.Background()

			people, _, err := store.ListPeople(ctx, database.PersonFilter{}, database.ListParams{Limit: database.MaxLimit})
			require.NoError(t, err)
			require.NotEmpty(t, people)

			for _, person := range people {
				for _, search := range append(substrings(person.Name), toUpper(person.Name)) {
					found, _, err := store.ListPeople(ctx, database.PersonFilter{},
						database.ListParams{Search: search, Limit: database.MaxLimit})
					require.NoError(t, err)
					assert.True(t, containsID(found, person.ID), "%q does not find %q", search, person.Name)
				}
			}
		})
	}
}

func TestPagesConcatenateToFullResult(t *testing.T) {
	sorts := []database.SortOrder{database.SortIDAsc, database.SortIDDesc, database.SortNameAsc, database.SortNameDesc}

	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			store := seededStore(t, backend)
			ctx := context.Background()
			// duplicate names exercise the id tiebreak
			testutil.MustCreatePerson(t, store, "Platón")
			testutil.MustCreatePerson(t, store, "Platón")

			for _, sort := range sorts {
				for _, search := range []string{"", "a"} {
					full, total, err := store.ListPeople(ctx, database.PersonFilter{},
						database.ListParams{Search: search, Sort: sort, Limit: database.MaxLimit})
					require.NoError(t, err)
					require.Equal(t, int64(len(full)), total)

					for _, size := range []int{1, 3, 7} {
						var pages []database.Person
						for offset := 0; ; offset += size {
							page, pageTotal, err := store.ListPeople(ctx, database.PersonFilter{},
								database.ListParams{Search: search, Sort: sort, Limit: size, Offset: offset})
							require.NoError(t, err)
							assert.Equal(t, total, pageTotal)
							if len(page) == 0 {
								break
							}
							pages = append(pages, page...)
						}
						assert.Equal(t, ids(full), ids(pages), "sort=%s search=%q size=%d", sort, search, size)
					}
				}
			}
		})
	}
}
