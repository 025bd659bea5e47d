package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TimeFilterParams holds parsed time filter parameters
type TimeFilterParams struct {
	From *time.Time
	To   *time.Time
}

// ParseTimeFilters extracts and validates time filter query parameters from HTTP request
func ParseTimeFilters(r *http.Request) (*TimeFilterParams, error) {
	params := &TimeFilterParams{}

	if str := r.URL.Query().Get("from"); str != "" {
		parsed, err := parseTimeParam(str)
		if err != nil {
			return nil, fmt.Errorf("invalid from format. Use RFC3339 (e.g., 2026-08-13T10:00:00Z) or YYYY-MM-DD")
		}
		params.From = &parsed
	}

	if str := r.URL.Query().Get("to"); str != "" {
		parsed, err := parseTimeParam(str)
		if err != nil {
			return nil, fmt.Errorf("invalid to format. Use RFC3339 (e.g., 2026-08-13T10:00:00Z) or YYYY-MM-DD")
		}
		params.To = &parsed
	}

	return params, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// PaginationParams holds parsed pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination extracts limit/offset query parameters with sane bounds
func ParsePagination(r *http.Request) (*PaginationParams, error) {
	params := &PaginationParams{Limit: 20, Offset: 0}

	if str := r.URL.Query().Get("limit"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid limit: must be a positive integer")
		}
		if n > 100 {
			n = 100
		}
		params.Limit = n
	}

	if str := r.URL.Query().Get("offset"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid offset: must be a non-negative integer")
		}
		params.Offset = n
	}

	return params, nil
}

// SortParams holds parsed sorting parameters
type SortParams struct {
	SortBy   string
	SortDesc bool
}

// ParseSort extracts sort_by/sort_order query parameters.
// allowed is the whitelist of sortable field names.
func ParseSort(r *http.Request, allowed ...string) (*SortParams, error) {
	params := &SortParams{}

	if str := r.URL.Query().Get("sort_by"); str != "" {
		ok := false
		for _, a := range allowed {
			if str == a {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("invalid sort_by: must be one of %s", strings.Join(allowed, ", "))
		}
		params.SortBy = str
	}

	switch order := strings.ToLower(r.URL.Query().Get("sort_order")); order {
	case "", "asc":
	case "desc":
		params.SortDesc = true
	default:
		return nil, fmt.Errorf("invalid sort_order: must be asc or desc")
	}

	return params, nil
}
