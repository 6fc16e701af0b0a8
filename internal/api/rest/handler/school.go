package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// SchoolHandler handles school-related requests
type SchoolHandler struct {
	store database.Store
}

// NewSchoolHandler creates a new school handler
func NewSchoolHandler(store database.Store) *SchoolHandler {
	return &SchoolHandler{store: store}
}

type schoolRequest struct {
	Name        string `json:"name" binding:"required"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

func (r *schoolRequest) apply(s *database.School) {
	s.Name = r.Name
	s.ImageURL = r.ImageURL
	s.Description = r.Description
}

// ListSchools returns a page of schools
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	schools, total, err := h.store.ListSchools(c.Request.Context(), params)
	if err != nil {
		respondStoreError(c, err, "School")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatSchools(schools), params, total))
}

// GetSchool returns a specific school by ID
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	id, ok := parseID(c, "id", "school")
	if !ok {
		return
	}

	school, err := h.store.GetSchool(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "School")
		return
	}

	respondOK(c, formatSchool(school))
}

// CreateSchool inserts a new school; names are unique ignoring case
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req schoolRequest
	if !bindJSON(c, &req) {
		return
	}

	school := &database.School{}
	req.apply(school)
	if err := h.store.CreateSchool(c.Request.Context(), school); err != nil {
		respondStoreError(c, err, "School")
		return
	}

	respondCreated(c, formatSchool(school))
}

// UpdateSchool replaces the fields of an existing school
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	id, ok := parseID(c, "id", "school")
	if !ok {
		return
	}
	var req schoolRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	school, err := h.store.GetSchool(ctx, id)
	if err != nil {
		respondStoreError(c, err, "School")
		return
	}
	req.apply(school)
	if err := h.store.UpdateSchool(ctx, school); err != nil {
		respondStoreError(c, err, "School")
		return
	}

	respondOK(c, formatSchool(school))
}

// DeleteSchool removes a school and detaches its people, who are kept
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id, ok := parseID(c, "id", "school")
	if !ok {
		return
	}

	if err := h.store.DeleteSchool(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "School")
		return
	}

	respondNoContent(c)
}

// ListSchoolPeople returns a page of the people linked to a school
func (h *SchoolHandler) ListSchoolPeople(c *gin.Context) {
	id, ok := parseID(c, "id", "school")
	if !ok {
		return
	}
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetSchool(ctx, id); err != nil {
		respondStoreError(c, err, "School")
		return
	}

	people, total, err := h.store.ListPeople(ctx, database.PersonFilter{SchoolID: &id}, params)
	if err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatPeople(people), params, total))
}
