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

func TestSchoolCRUD(t *testing.T) {
	router, store := setupTestRouter(t)
	handler := NewSchoolHandler(store)

	router.GET("/schools", handler.ListSchools)
	router.POST("/schools", handler.CreateSchool)
	router.GET("/schools/:id", handler.GetSchool)
	router.PUT("/schools/:id", handler.UpdateSchool)
	router.DELETE("/schools/:id", handler.DeleteSchool)

	w := doRequest(router, http.MethodPost, "/schools", map[string]any{"name": "Estoicismo", "description": "Escuela helenística."})
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decode(t, w)["data"].(map[string]any)["id"].(float64))

	t.Run("duplicate name ignoring case", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/schools", map[string]any{"name": "ESTOICISMO"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("missing name", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/schools", map[string]any{"description": "Sin nombre"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, fmt.Sprintf("/schools/%d", id), nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w)["data"].(map[string]any)
		assert.Equal(t, "Estoicismo", data["name"])
		assert.Equal(t, "Escuela helenística.", data["description"])
	})

	t.Run("update", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, fmt.Sprintf("/schools/%d", id), map[string]any{"name": "Stoa"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Stoa", decode(t, w)["data"].(map[string]any)["name"])

		w = doRequest(router, http.MethodPut, "/schools/999999", map[string]any{"name": "Cinismo"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/schools?q=sto", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Stoa"}, names(dataList(t, decode(t, w)), "name"))

		w = doRequest(router, http.MethodGet, "/schools?limit=101", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("/schools/%d", id)
		assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, path, nil).Code)
		assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, path, nil).Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodDelete, "/schools/abc", nil).Code)
	})
}

func TestListSchoolPeople(t *testing.T) {
	router, store := setupTestRouter(t)
	handler := NewSchoolHandler(store)
	ctx := context.Background()

	school := &database.School{Name: "Epicureísmo"}
	require.NoError(t, store.CreateSchool(ctx, school))
	epicuro := testutil.MustCreatePerson(t, store, "Epicuro")
	lucrecio := testutil.MustCreatePerson(t, store, "Lucrecio")
	testutil.MustCreatePerson(t, store, "Séneca")
	require.NoError(t, store.LinkPersonSchool(ctx, epicuro.ID, school.ID))
	require.NoError(t, store.LinkPersonSchool(ctx, lucrecio.ID, school.ID))

	router.GET("/schools/:id/people", handler.ListSchoolPeople)
	router.DELETE("/schools/:id", handler.DeleteSchool)

	path := fmt.Sprintf("/schools/%d/people", school.ID)
	w := doRequest(router, http.MethodGet, path+"?sort=-name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, []string{"Lucrecio", "Epicuro"}, names(dataList(t, resp), "name"))
	assert.Equal(t, float64(2), resp["pagination"].(map[string]any)["total"])

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/schools/999999/people", nil).Code)

	// deleting the school keeps its people
	require.Equal(t, http.StatusNoContent, doRequest(router, http.MethodDelete, fmt.Sprintf("/schools/%d", school.ID), nil).Code)
	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.People)
	schools, err := store.ListPersonSchools(ctx, epicuro.ID)
	require.NoError(t, err)
	assert.Empty(t, schools)
}
