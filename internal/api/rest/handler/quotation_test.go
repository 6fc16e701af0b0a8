package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/testutil"
)

func TestRandomQuotations(t *testing.T) {
	router, store := setupTestRouter(t)
	handler := NewQuotationHandler(store)
	ctx := context.Background()

	router.GET("/quotations/random", handler.RandomQuotations)

	for _, text := range []string{"Conócete a ti mismo.", "Nada en exceso."} {
		require.NoError(t, store.CreateQuotation(ctx, &database.Quotation{Text: text}))
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedLen    int
	}{
		{name: "default sample with fewer rows", query: "", expectedStatus: http.StatusOK, expectedLen: 2},
		{name: "more than available", query: "?limit=3", expectedStatus: http.StatusOK, expectedLen: 2},
		{name: "single", query: "?limit=1", expectedStatus: http.StatusOK, expectedLen: 1},
		{name: "zero", query: "?limit=0", expectedStatus: http.StatusUnprocessableEntity},
		{name: "above maximum", query: "?limit=101", expectedStatus: http.StatusUnprocessableEntity},
		{name: "not a number", query: "?limit=some", expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/quotations/random"+tt.query, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			texts := names(dataList(t, decode(t, w)), "text")
			assert.Len(t, texts, tt.expectedLen)
			seen := map[string]bool{}
			for _, text := range texts {
				assert.False(t, seen[text], "duplicate quotation %q", text)
				seen[text] = true
			}
		})
	}
}

func TestQuotationCRUD(t *testing.T) {
	router, store := setupTestRouter(t)
	handler := NewQuotationHandler(store)

	seneca := testutil.MustCreatePerson(t, store, "Séneca")

	router.GET("/quotations", handler.ListQuotations)
	router.POST("/quotations", handler.CreateQuotation)
	router.GET("/quotations/:id", handler.GetQuotation)
	router.PUT("/quotations/:id", handler.UpdateQuotation)
	router.DELETE("/quotations/:id", handler.DeleteQuotation)

	w := doRequest(router, http.MethodPost, "/quotations", map[string]any{
		"text":        "Mientras se espera vivir, la vida pasa.",
		"source_work": "Cartas a Lucilio",
		"person_id":   seneca.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)["data"].(map[string]any)
	path := fmt.Sprintf("/quotations/%d", int64(created["id"].(float64)))

	assert.Equal(t, http.StatusUnprocessableEntity,
		doRequest(router, http.MethodPost, "/quotations", map[string]any{"source_work": "Sin texto"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		doRequest(router, http.MethodPost, "/quotations", map[string]any{"text": "Huérfana", "person_id": 999999}).Code)

	w = doRequest(router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cartas a Lucilio", decode(t, w)["data"].(map[string]any)["source_work"])

	w = doRequest(router, http.MethodGet, "/quotations?q=VIDA%20PASA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, decode(t, w)), 1)

	w = doRequest(router, http.MethodGet, "/quotations?q=100%25", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, decode(t, w)))

	w = doRequest(router, http.MethodPut, path, map[string]any{"text": "La vida, si sabes usarla, es larga.", "year": "49"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "49", updated["year"])
	assert.Nil(t, updated["person_id"])

	assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, path, nil).Code)
}
