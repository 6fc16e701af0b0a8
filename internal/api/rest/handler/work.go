package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
)

// WorkHandler handles work-related requests
type WorkHandler struct {
	store database.Store
}

// NewWorkHandler creates a new work handler
func NewWorkHandler(store database.Store) *WorkHandler {
	return &WorkHandler{store: store}
}

type workRequest struct {
	ExternalID  *string `json:"external_id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	URL         string  `json:"url"`
	IsAudiobook bool    `json:"is_audiobook"`
	IsEbook     bool    `json:"is_ebook"`
	PersonID    *int64  `json:"person_id"`
}

func (r *workRequest) apply(w *database.Work) {
	w.ExternalID = r.ExternalID
	w.Title = r.Title
	w.Description = r.Description
	w.ImageURL = r.ImageURL
	w.URL = r.URL
	w.IsAudiobook = r.IsAudiobook
	w.IsEbook = r.IsEbook
	w.PersonID = r.PersonID
}

// ListWorks returns a page of works
// Supports ?q= (title search), ?person_id=, ?sort=, ?limit= and ?offset=
func (h *WorkHandler) ListWorks(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	personID, ok := parseOptionalID(c, "person_id")
	if !ok {
		return
	}

	works, total, err := h.store.ListWorks(c.Request.Context(), database.WorkFilter{PersonID: personID}, params)
	if err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatWorks(works), params, total))
}

// GetWork returns a specific work by ID
func (h *WorkHandler) GetWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}

	work, err := h.store.GetWork(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	respondOK(c, formatWork(work))
}

// CreateWork inserts a new work; a person_id must name an existing person
func (h *WorkHandler) CreateWork(c *gin.Context) {
	var req workRequest
	if !bindJSON(c, &req) {
		return
	}

	work := &database.Work{}
	req.apply(work)
	if err := h.store.CreateWork(c.Request.Context(), work); err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	respondCreated(c, formatWork(work))
}

// UpdateWork replaces the fields of an existing work
func (h *WorkHandler) UpdateWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}
	var req workRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	work, err := h.store.GetWork(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Work")
		return
	}
	req.apply(work)
	if err := h.store.UpdateWork(ctx, work); err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	respondOK(c, formatWork(work))
}

// DeleteWork removes a work
func (h *WorkHandler) DeleteWork(c *gin.Context) {
	id, ok := parseID(c, "id", "work")
	if !ok {
		return
	}

	if err := h.store.DeleteWork(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	respondNoContent(c)
}
