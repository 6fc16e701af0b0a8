package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
	"github.com/palemoky/philosophy-catalog-api/internal/helpers"
)

// DefaultRandomQuotations is the sample size of /quotations/random without ?limit=.
const DefaultRandomQuotations = 3

// QuotationHandler handles quotation-related requests
type QuotationHandler struct {
	store database.Store
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(store database.Store) *QuotationHandler {
	return &QuotationHandler{store: store}
}

type quotationRequest struct {
	ExternalID *string `json:"external_id"`
	Text       string  `json:"text" binding:"required"`
	SourceWork string  `json:"source_work"`
	Year       string  `json:"year"`
	PersonID   *int64  `json:"person_id"`
}

func (r *quotationRequest) apply(q *database.Quotation) {
	q.ExternalID = r.ExternalID
	q.Text = r.Text
	q.SourceWork = r.SourceWork
	q.Year = r.Year
	q.PersonID = r.PersonID
}

// ListQuotations returns a page of quotations
// Supports ?q= (text search), ?person_id=, ?sort=, ?limit= and ?offset=
func (h *QuotationHandler) ListQuotations(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	personID, ok := parseOptionalID(c, "person_id")
	if !ok {
		return
	}

	quotations, total, err := h.store.ListQuotations(c.Request.Context(), database.QuotationFilter{PersonID: personID}, params)
	if err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatQuotations(quotations), params, total))
}

// RandomQuotations returns up to ?limit= distinct quotations chosen at random.
// Fewer rows than requested yields every row.
func (h *QuotationHandler) RandomQuotations(c *gin.Context) {
	limit, err := helpers.ParseIntDefault(c.Query("limit"), DefaultRandomQuotations)
	if err != nil || limit < 1 || limit > database.MaxLimit {
		respondAPIError(c, apierrors.Validation(fmt.Sprintf("limit must be an integer between 1 and %d", database.MaxLimit)))
		return
	}

	quotations, err := h.store.RandomQuotations(c.Request.Context(), limit)
	if err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	respondOK(c, formatQuotations(quotations))
}

// GetQuotation returns a specific quotation by ID
func (h *QuotationHandler) GetQuotation(c *gin.Context) {
	id, ok := parseID(c, "id", "quotation")
	if !ok {
		return
	}

	quotation, err := h.store.GetQuotation(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	respondOK(c, formatQuotation(quotation))
}

// CreateQuotation inserts a new quotation; a person_id must name an existing person
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	var req quotationRequest
	if !bindJSON(c, &req) {
		return
	}

	quotation := &database.Quotation{}
	req.apply(quotation)
	if err := h.store.CreateQuotation(c.Request.Context(), quotation); err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	respondCreated(c, formatQuotation(quotation))
}

// UpdateQuotation replaces the fields of an existing quotation
func (h *QuotationHandler) UpdateQuotation(c *gin.Context) {
	id, ok := parseID(c, "id", "quotation")
	if !ok {
		return
	}
	var req quotationRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	quotation, err := h.store.GetQuotation(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}
	req.apply(quotation)
	if err := h.store.UpdateQuotation(ctx, quotation); err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	respondOK(c, formatQuotation(quotation))
}

// DeleteQuotation removes a quotation
func (h *QuotationHandler) DeleteQuotation(c *gin.Context) {
	id, ok := parseID(c, "id", "quotation")
	if !ok {
		return
	}

	if err := h.store.DeleteQuotation(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	respondNoContent(c)
}
