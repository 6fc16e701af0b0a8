package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/palemoky/philosophy-catalog-api/internal/database"
	apierrors "github.com/palemoky/philosophy-catalog-api/internal/errors"
	"github.com/palemoky/philosophy-catalog-api/internal/helpers"
)

// ParseListParams reads q, sort, limit and offset from the query string.
// Out-of-range or malformed pagination is rejected, never clamped; an unknown
// sort key falls back to id order.
func ParseListParams(c *gin.Context) (database.ListParams, *apierrors.APIError) {
	limit, err := helpers.ParseIntDefault(c.Query("limit"), database.DefaultLimit)
	if err != nil {
		return database.ListParams{}, apierrors.Validation("limit must be an integer")
	}
	offset, err := helpers.ParseIntDefault(c.Query("offset"), 0)
	if err != nil {
		return database.ListParams{}, apierrors.Validation("offset must be an integer")
	}

	params := database.ListParams{
		Search: c.Query("q"),
		Sort:   database.ParseSortOrder(c.Query("sort")),
		Limit:  limit,
		Offset: offset,
	}
	if err := params.Validate(); err != nil {
		return database.ListParams{}, apierrors.FromStore(err, "")
	}
	return params, nil
}

// parseListParams is ParseListParams that writes the error response itself.
func parseListParams(c *gin.Context) (database.ListParams, bool) {
	params, apiErr := ParseListParams(c)
	if apiErr != nil {
		respondAPIError(c, apiErr)
		return params, false
	}
	return params, true
}

// parseOptionalID reads an optional numeric filter such as person_id.
func parseOptionalID(c *gin.Context, name string) (*int64, bool) {
	id, err := helpers.ParseOptionalInt64(helpers.OptionalQuery(c.GetQuery(name)))
	if err != nil {
		respondAPIError(c, apierrors.Validation(name+" must be an integer"))
		return nil, false
	}
	return id, true
}

// NewPaginationResponse creates a standardized pagination response
func NewPaginationResponse(data any, params database.ListParams, total int64) gin.H {
	return gin.H{
		"data": data,
		"pagination": gin.H{
			"limit":  params.Limit,
			"offset": params.Offset,
			"total":  total,
		},
	}
}
