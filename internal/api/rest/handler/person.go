package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
)

// PersonHandler handles person-related requests
type PersonHandler struct {
	store database.Store
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(store database.Store) *PersonHandler {
	return &PersonHandler{store: store}
}

type personRequest struct {
	ExternalID         *string `json:"external_id"`
	Name               string  `json:"name" binding:"required"`
	Epoch              string  `json:"epoch"`
	BirthDate          *string `json:"birth_date"`
	DeathDate          *string `json:"death_date"`
	BirthYear          string  `json:"birth_year"`
	DeathYear          string  `json:"death_year"`
	ImageURL           string  `json:"image_url"`
	Biography          string  `json:"biography"`
	MainSchool         string  `json:"main_school"`
	Interests          string  `json:"interests"`
	TopicalDescription string  `json:"topical_description"`
	IEPLink            string  `json:"iep_link"`
	SEPLink            string  `json:"sep_link"`
	WikiTitle          string  `json:"wiki_title"`
}

// apply copies the editable fields onto p. Imported documents such as images
// and librivox_ids are left as they are.
func (r *personRequest) apply(p *database.Person) *apierrors.APIError {
	birth, apiErr := parseDate("birth_date", r.BirthDate)
	if apiErr != nil {
		return apiErr
	}
	death, apiErr := parseDate("death_date", r.DeathDate)
	if apiErr != nil {
		return apiErr
	}

	p.ExternalID = r.ExternalID
	p.Name = r.Name
	p.Epoch = r.Epoch
	p.BirthDate = birth
	p.DeathDate = death
	p.BirthYear = r.BirthYear
	p.DeathYear = r.DeathYear
	p.ImageURL = r.ImageURL
	p.Biography = r.Biography
	p.MainSchool = r.MainSchool
	p.Interests = r.Interests
	p.TopicalDescription = r.TopicalDescription
	p.IEPLink = r.IEPLink
	p.SEPLink = r.SEPLink
	p.WikiTitle = r.WikiTitle
	return nil
}

// ListPeople returns a page of people.
// Supports ?q=, ?epoch=, ?school_id=, ?sort=, ?limit= and ?offset=
func (h *PersonHandler) ListPeople(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	schoolID, ok := parseOptionalID(c, "school_id")
	if !ok {
		return
	}

	filter := database.PersonFilter{Epoch: c.Query("epoch"), SchoolID: schoolID}
	people, total, err := h.store.ListPeople(c.Request.Context(), filter, params)
	if err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatPeople(people), params, total))
}

// GetPerson returns a specific person by ID, with linked schools
func (h *PersonHandler) GetPerson(c *gin.Context) {
	id, ok := parseID(c, "id", "person")
	if !ok {
		return
	}

	person, err := h.store.GetPerson(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	respondOK(c, formatPerson(person))
}

// CreatePerson inserts a new person
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var req personRequest
	if !bindJSON(c, &req) {
		return
	}

	person := &database.Person{}
	if apiErr := req.apply(person); apiErr != nil {
		respondAPIError(c, apiErr)
		return
	}
	if err := h.store.CreatePerson(c.Request.Context(), person); err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	respondCreated(c, formatPerson(person))
}

// UpdatePerson replaces the editable fields of an existing person
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	id, ok := parseID(c, "id", "person")
	if !ok {
		return
	}
	var req personRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	person, err := h.store.GetPerson(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Person")
		return
	}
	if apiErr := req.apply(person); apiErr != nil {
		respondAPIError(c, apiErr)
		return
	}
	if err := h.store.UpdatePerson(ctx, person); err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	respondOK(c, formatPerson(person))
}

// DeletePerson removes a person with its works and quotations
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, ok := parseID(c, "id", "person")
	if !ok {
		return
	}

	if err := h.store.DeletePerson(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	respondNoContent(c)
}

// ListPersonSchools returns every school linked to a person
func (h *PersonHandler) ListPersonSchools(c *gin.Context) {
	id, ok := parseID(c, "id", "person")
	if !ok {
		return
	}

	schools, err := h.store.ListPersonSchools(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Person")
		return
	}

	respondOK(c, formatSchools(schools))
}

// LinkPersonSchool attaches a school to a person. Linking twice is a no-op.
func (h *PersonHandler) LinkPersonSchool(c *gin.Context) {
	personID, schoolID, ok := parsePair(c)
	if !ok {
		return
	}

	if err := h.store.LinkPersonSchool(c.Request.Context(), personID, schoolID); err != nil {
		respondStoreError(c, err, "Person or school")
		return
	}

	respondNoContent(c)
}

// UnlinkPersonSchool detaches a school from a person. A missing link is a no-op.
func (h *PersonHandler) UnlinkPersonSchool(c *gin.Context) {
	personID, schoolID, ok := parsePair(c)
	if !ok {
		return
	}

	if err := h.store.UnlinkPersonSchool(c.Request.Context(), personID, schoolID); err != nil {
		respondStoreError(c, err, "Person or school")
		return
	}

	respondNoContent(c)
}

// ListPersonWorks returns a page of the works attributed to a person
func (h *PersonHandler) ListPersonWorks(c *gin.Context) {
	id, params, ok := h.personPage(c)
	if !ok {
		return
	}

	works, total, err := h.store.ListWorks(c.Request.Context(), database.WorkFilter{PersonID: &id}, params)
	if err != nil {
		respondStoreError(c, err, "Work")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatWorks(works), params, total))
}

// ListPersonQuotations returns a page of the quotations attributed to a person
func (h *PersonHandler) ListPersonQuotations(c *gin.Context) {
	id, params, ok := h.personPage(c)
	if !ok {
		return
	}

	quotations, total, err := h.store.ListQuotations(c.Request.Context(), database.QuotationFilter{PersonID: &id}, params)
	if err != nil {
		respondStoreError(c, err, "Quotation")
		return
	}

	c.JSON(http.StatusOK, NewPaginationResponse(formatQuotations(quotations), params, total))
}

// personPage resolves the person of a nested list route, answering 404 for
// unknown people rather than an empty page.
func (h *PersonHandler) personPage(c *gin.Context) (int64, database.ListParams, bool) {
	id, ok := parseID(c, "id", "person")
	if !ok {
		return 0, database.ListParams{}, false
	}
	params, ok := parseListParams(c)
	if !ok {
		return 0, params, false
	}
	if _, err := h.store.GetPerson(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "Person")
		return 0, params, false
	}
	return id, params, true
}

func parsePair(c *gin.Context) (int64, int64, bool) {
	personID, ok := parseID(c, "id", "person")
	if !ok {
		return 0, 0, false
	}
	schoolID, ok := parseID(c, "school_id", "school")
	if !ok {
		return 0, 0, false
	}
	return personID, schoolID, true
}
