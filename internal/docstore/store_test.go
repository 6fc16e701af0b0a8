package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func mustPerson(t *testing.T, s *Store, name string) *database.Person {
	t.Helper()
	p := &database.Person{Name: name}
	require.NoError(t, s.CreatePerson(context.Background(), p))
	return p
}

func TestPersonDocumentRoundTrip(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	birth := datatypes.Date(time.Date(1724, time.April, 22, 0, 0, 0, 0, time.UTC))
	in := &database.Person{
		ExternalID: strPtr("kant"),
		Name:       "  Immanuel Kant ",
		Epoch:      "moderna",
		BirthDate:  &birth,
		Biography:  "Filósofo prusiano.",
		Images:     datatypes.JSON(`{"thumbnail":"k.jpg"}`),
	}
	require.NoError(t, s.CreatePerson(ctx, in))
	assert.Equal(t, int64(1), in.ID)

	got, err := s.GetPerson(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "Immanuel Kant", got.Name)
	assert.Equal(t, "Moderna", got.Epoch)
	assert.Equal(t, "1724-04-22", time.Time(*got.BirthDate).Format("2006-01-02"))
	assert.JSONEq(t, `{"thumbnail":"k.jpg"}`, string(got.Images))

	byExt, err := s.GetPersonByExternalID(ctx, "kant")
	require.NoError(t, err)
	assert.Equal(t, in.ID, byExt.ID)

	_, err = s.GetPerson(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreatePersonValidation(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.CreatePerson(ctx, &database.Person{Name: "   "}), database.ErrValidation)

	require.NoError(t, s.CreatePerson(ctx, &database.Person{Name: "A", ExternalID: strPtr("x")}))
	assert.ErrorIs(t, s.CreatePerson(ctx, &database.Person{Name: "B", ExternalID: strPtr("x")}), database.ErrValidation)
}

func TestUpsertPersonByExternalID(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertPerson(ctx, &database.Person{ExternalID: strPtr("hume"), Name: "Hume"})
	require.NoError(t, err)

	again, err := s.UpsertPerson(ctx, &database.Person{ExternalID: strPtr("hume"), Name: "David Hume"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := s.GetPerson(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "David Hume", got.Name)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.People)
}

func TestDeletePersonCascades(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Sócrates")
	other := mustPerson(t, s, "Platón")
	schoolID, err := s.GetOrCreateSchool(ctx, "Socrática")
	require.NoError(t, err)
	require.NoError(t, s.LinkPersonSchool(ctx, p.ID, schoolID))
	require.NoError(t, s.LinkPersonSchool(ctx, other.ID, schoolID))

	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "Obra de Sócrates", PersonID: &p.ID}))
	require.NoError(t, s.CreateQuotation(ctx, &database.Quotation{Text: "Solo sé que no sé nada", ExternalID: strPtr("q1"), PersonID: &p.ID}))
	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "La República", PersonID: &other.ID}))

	require.NoError(t, s.DeletePerson(ctx, p.ID))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &database.Counts{People: 1, Schools: 1, Works: 1, Quotations: 0}, counts)

	people, total, err := s.ListPeople(ctx, database.PersonFilter{SchoolID: &schoolID}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other.ID, people[0].ID)

	assert.False(t, mr.Exists(externalIDKey(entityQuotation, "q1")))
	assert.False(t, mr.Exists(personWorksKey(p.ID)))

	assert.ErrorIs(t, s.DeletePerson(ctx, p.ID), database.ErrNotFound)
}

func TestDeleteSchoolKeepsPeople(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Epicuro")
	schoolID, err := s.GetOrCreateSchool(ctx, "Epicureísmo")
	require.NoError(t, err)
	require.NoError(t, s.LinkPersonSchool(ctx, p.ID, schoolID))

	require.NoError(t, s.DeleteSchool(ctx, schoolID))

	got, err := s.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Schools)

	// the name is free again
	again, err := s.GetOrCreateSchool(ctx, "epicureísmo")
	require.NoError(t, err)
	assert.NotEqual(t, schoolID, again)
}

func TestLinkAndUnlink(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Zenón de Citio")
	schoolID, err := s.GetOrCreateSchool(ctx, "Estoicismo")
	require.NoError(t, err)

	require.NoError(t, s.LinkPersonSchool(ctx, p.ID, schoolID))
	require.NoError(t, s.LinkPersonSchool(ctx, p.ID, schoolID))

	schools, err := s.ListPersonSchools(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "Estoicismo", schools[0].Name)

	require.NoError(t, s.UnlinkPersonSchool(ctx, p.ID, schoolID))
	require.NoError(t, s.UnlinkPersonSchool(ctx, p.ID, schoolID))

	schools, err = s.ListPersonSchools(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, schools)

	assert.ErrorIs(t, s.LinkPersonSchool(ctx, p.ID, 404), database.ErrNotFound)
	assert.ErrorIs(t, s.LinkPersonSchool(ctx, 404, schoolID), database.ErrNotFound)
	_, err = s.ListPersonSchools(ctx, 404)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestSchoolNamesAreUnique(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateSchool(ctx, "Cinismo")
	require.NoError(t, err)
	second, err := s.GetOrCreateSchool(ctx, "CINISMO")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.ErrorIs(t, s.CreateSchool(ctx, &database.School{Name: "cinismo"}), database.ErrValidation)

	other := &database.School{Name: "Escepticismo"}
	require.NoError(t, s.CreateSchool(ctx, other))
	other.Name = "Cinismo"
	assert.ErrorIs(t, s.UpdateSchool(ctx, other), database.ErrValidation)

	other.Name = "Pirronismo"
	require.NoError(t, s.UpdateSchool(ctx, other))
	id, err := s.GetOrCreateSchool(ctx, "Escepticismo")
	require.NoError(t, err)
	assert.NotEqual(t, other.ID, id)
}

func TestListPeopleSearchSortPaginate(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Tales de Mileto", "Anaximandro", "Anaxímenes", "Heráclito", "Parménides"} {
		mustPerson(t, s, name)
	}

	tests := []struct {
		name      string
		params    database.ListParams
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "default order is id",
			params:    database.DefaultListParams(),
			wantNames: []string{"Tales de Mileto", "Anaximandro", "Anaxímenes", "Heráclito", "Parménides"},
			wantTotal: 5,
		},
		{
			name:      "search is case insensitive substring",
			params:    database.ListParams{Search: "ANAX", Sort: database.SortIDAsc, Limit: 20},
			wantNames: []string{"Anaximandro", "Anaxímenes"},
			wantTotal: 2,
		},
		{
			name:      "name descending",
			params:    database.ListParams{Sort: database.SortNameDesc, Limit: 2},
			wantNames: []string{"Tales de Mileto", "Parménides"},
			wantTotal: 5,
		},
		{
			name:      "id descending with offset",
			params:    database.ListParams{Sort: database.SortIDDesc, Limit: 2, Offset: 1},
			wantNames: []string{"Heráclito", "Anaxímenes"},
			wantTotal: 5,
		},
		{
			name:      "offset past the end",
			params:    database.ListParams{Sort: database.SortIDAsc, Limit: 10, Offset: 10},
			wantNames: []string{},
			wantTotal: 5,
		},
		{
			name:      "wildcards are literal",
			params:    database.ListParams{Search: "%", Sort: database.SortIDAsc, Limit: 10},
			wantNames: []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			people, total, err := s.ListPeople(ctx, database.PersonFilter{}, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			names := make([]string, 0, len(people))
			for _, p := range people {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}

	_, _, err := s.ListPeople(ctx, database.PersonFilter{}, database.ListParams{Limit: 101})
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestListPeopleByEpoch(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePerson(ctx, &database.Person{Name: "Agustín de Hipona", Epoch: "Medieval"}))
	require.NoError(t, s.CreatePerson(ctx, &database.Person{Name: "Descartes", Epoch: "Moderna"}))

	people, total, err := s.ListPeople(ctx, database.PersonFilter{Epoch: "medieval"}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Agustín de Hipona", people[0].Name)

	_, total, err = s.ListPeople(ctx, database.PersonFilter{Epoch: "   "}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "blank epoch is no filter")
}

func TestWorkPersonReference(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	err := s.CreateWork(ctx, &database.Work{Title: "Huérfana", PersonID: int64Ptr(42)})
	assert.ErrorIs(t, err, database.ErrValidation)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Works)

	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "Anónima"}))
}

func TestUpdateWorkMovesOwner(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	a := mustPerson(t, s, "Locke")
	b := mustPerson(t, s, "Berkeley")

	w := &database.Work{Title: "Ensayo", PersonID: &a.ID}
	require.NoError(t, s.CreateWork(ctx, w))
	created := w.CreatedAt

	w.PersonID = &b.ID
	require.NoError(t, s.UpdateWork(ctx, w))
	assert.Equal(t, created, w.CreatedAt)

	_, totalA, err := s.ListWorks(ctx, database.WorkFilter{PersonID: &a.ID}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Zero(t, totalA)

	worksB, totalB, err := s.ListWorks(ctx, database.WorkFilter{PersonID: &b.ID}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), totalB)
	assert.Equal(t, "Ensayo", worksB[0].Title)

	require.NoError(t, s.DeleteWork(ctx, w.ID))
	_, err = s.GetWork(ctx, w.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestListPlaceholderWorks(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Hobbes")
	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "Obra de Hobbes", PersonID: &p.ID}))
	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "Leviatán", PersonID: &p.ID}))
	require.NoError(t, s.CreateWork(ctx, &database.Work{Title: "obra de nadie"}))

	works, err := s.ListPlaceholderWorks(ctx, "Obra de ")
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "Obra de Hobbes", works[0].Title)
}

func TestRandomQuotations(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"uno", "dos"} {
		require.NoError(t, s.CreateQuotation(ctx, &database.Quotation{Text: text}))
	}

	got, err := s.RandomQuotations(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	for _, text := range []string{"tres", "cuatro", "cinco"} {
		require.NoError(t, s.CreateQuotation(ctx, &database.Quotation{Text: text}))
	}

	got, err = s.RandomQuotations(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	seen := map[int64]bool{}
	for _, q := range got {
		assert.False(t, seen[q.ID], "duplicate quotation %d", q.ID)
		seen[q.ID] = true
	}

	_, err = s.RandomQuotations(ctx, 0)
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestUpdateQuotationMovesExternalID(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	q := &database.Quotation{Text: "El hombre es la medida", ExternalID: strPtr("old")}
	require.NoError(t, s.CreateQuotation(ctx, q))

	q.ExternalID = strPtr("new")
	require.NoError(t, s.UpdateQuotation(ctx, q))

	assert.False(t, mr.Exists(externalIDKey(entityQuotation, "old")))
	assert.True(t, mr.Exists(externalIDKey(entityQuotation, "new")))

	require.NoError(t, s.DeleteQuotation(ctx, q.ID))
	assert.False(t, mr.Exists(externalIDKey(entityQuotation, "new")))
}

func TestSaveEnrichment(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Aristóteles")
	image := "https://example.com/aristoteles.jpg"
	bio := "Filósofo griego."

	err := s.SaveEnrichment(ctx, &database.Enrichment{
		PersonID:   p.ID,
		ImageURL:   &image,
		Biography:  &bio,
		Works:      []database.Work{{Title: "Ética a Nicómaco"}, {Title: "Política"}},
		Quotations: []database.Quotation{{Text: "Somos lo que hacemos repetidamente", ExternalID: strPtr("ar-1")}},
	})
	require.NoError(t, err)

	got, err := s.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, image, got.ImageURL)
	assert.Equal(t, bio, got.Biography)

	works, total, err := s.ListWorks(ctx, database.WorkFilter{PersonID: &p.ID}, database.DefaultListParams())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Ética a Nicómaco", works[0].Title)

	quotes, _, err := s.ListQuotations(ctx, database.QuotationFilter{PersonID: &p.ID}, database.DefaultListParams())
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, p.ID, *quotes[0].PersonID)
}

func TestSaveEnrichmentRejectsBeforeWriting(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p := mustPerson(t, s, "Pitágoras")
	bio := "Matemático y filósofo."

	err := s.SaveEnrichment(ctx, &database.Enrichment{
		PersonID:   p.ID,
		Biography:  &bio,
		Works:      []database.Work{{Title: "Versos dorados"}},
		Quotations: []database.Quotation{{Text: "   "}},
	})
	assert.ErrorIs(t, err, database.ErrValidation)

	got, err := s.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Biography)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Works)

	assert.ErrorIs(t, s.SaveEnrichment(ctx, &database.Enrichment{PersonID: 999, Biography: &bio}), database.ErrNotFound)
}
