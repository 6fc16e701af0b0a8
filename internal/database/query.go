package database

import (
	"strings"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

const (
	// DefaultLimit is the page size used when the caller gives none.
	DefaultLimit = 20
	// MaxLimit bounds every page; larger requests are rejected.
	MaxLimit = 100
)

// SortOrder is one of the fixed sort keys accepted by list operations.
type SortOrder string

const (
	SortIDAsc    SortOrder = "id"
	SortIDDesc   SortOrder = "-id"
	SortNameAsc  SortOrder = "name"
	SortNameDesc SortOrder = "-name"
)

// ParseSortOrder maps user input onto a known sort key.
// Unrecognized keys fall back to id ascending without error.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.TrimSpace(s)) {
	case SortIDDesc:
		return SortIDDesc
	case SortNameAsc:
		return SortNameAsc
	case SortNameDesc:
		return SortNameDesc
	default:
		return SortIDAsc
	}
}

// ListParams holds search, sort, and pagination for list operations.
type ListParams struct {
	Search string
	Sort   SortOrder
	Limit  int
	Offset int
}

// DefaultListParams returns the first page with the default size and id order.
func DefaultListParams() ListParams {
	return ListParams{Sort: SortIDAsc, Limit: DefaultLimit}
}

// Validate rejects out-of-range pagination instead of clamping it.
func (p ListParams) Validate() error {
	if p.Limit < 1 || p.Limit > MaxLimit {
		return validationError("limit must be between 1 and %d", MaxLimit)
	}
	if p.Offset < 0 {
		return validationError("offset must not be negative")
	}
	return nil
}

// SearchPattern returns the lowercase needle, or "" when no search was requested.
func (p ListParams) SearchPattern() string {
	return classifier.SearchKey(strings.TrimSpace(p.Search))
}

// orderClause renders the ORDER BY for table, whose designated text column is nameColumn.
// id always breaks ties so that pages are stable.
func (p ListParams) orderClause(table, nameColumn string) string {
	id := table + ".id"
	name := table + "." + nameColumn
	switch p.Sort {
	case SortIDDesc:
		return id + " DESC"
	case SortNameAsc:
		return name + " ASC, " + id + " ASC"
	case SortNameDesc:
		return name + " DESC, " + id + " ASC"
	default:
		return id + " ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE operand matching needle anywhere, with wildcards escaped.
func containsPattern(needle string) string {
	return "%" + likeEscaper.Replace(needle) + "%"
}

// prefixPattern builds a LIKE operand matching values that start with prefix.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
