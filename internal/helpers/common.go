package helpers

import (
	"strconv"
	"strings"
)

// ParseOptionalInt64 parses a string pointer to int64 pointer
// Returns nil if the string is nil or empty
func ParseOptionalInt64(s *string) (*int64, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseIntDefault parses s as an int, returning def when s is blank.
// Malformed input is an error, never silently replaced by def.
func ParseIntDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// ParsePositiveID parses a path identifier. Zero and negative values are rejected.
func ParsePositiveID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// OptionalQuery returns a pointer to the query value, or nil when it is absent.
func OptionalQuery(value string, present bool) *string {
	if !present {
		return nil
	}
	return &value
}
