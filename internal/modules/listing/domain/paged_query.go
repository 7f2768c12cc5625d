package domain

import (
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// PagedQuery encapsulates the paging, search, and filter preferences of a
// dashboard table.
type PagedQuery struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// Normalize returns a sanitized copy applying defaults and bounds.
func (q PagedQuery) Normalize() PagedQuery {
	normalized := q
	if normalized.Page <= 0 {
		normalized.Page = 1
	}
	if normalized.PerPage <= 0 {
		normalized.PerPage = DefaultPerPage
	}
	if normalized.PerPage > MaxPerPage {
		normalized.PerPage = MaxPerPage
	}
	normalized.Search = strings.TrimSpace(normalized.Search)
	if len(normalized.Filters) > 0 {
		normalized.Filters = sanitizeFilters(normalized.Filters)
	}
	return normalized
}

// WithFilters merges the partial filter set into the query and rewinds to the
// first page. An empty value removes the filter.
func (q PagedQuery) WithFilters(partial map[string]string) PagedQuery {
	next := q.Normalize()
	merged := make(map[string]string, len(next.Filters)+len(partial))
	for key, value := range next.Filters {
		merged[key] = value
	}
	for key, value := range partial {
		trimmedKey := strings.ToLower(strings.TrimSpace(key))
		if trimmedKey == "" {
			continue
		}
		trimmedValue := strings.TrimSpace(value)
		if trimmedValue == "" {
			delete(merged, trimmedKey)
			continue
		}
		merged[trimmedKey] = trimmedValue
	}
	next.Filters = merged
	next.Page = 1
	return next
}

// WithSearch replaces the search term and rewinds to the first page.
func (q PagedQuery) WithSearch(search string) PagedQuery {
	next := q.Normalize()
	next.Search = strings.TrimSpace(search)
	next.Page = 1
	return next
}

// WithPage moves to the requested page keeping every other preference.
func (q PagedQuery) WithPage(page int) PagedQuery {
	next := q.Normalize()
	if page <= 0 {
		page = 1
	}
	next.Page = page
	return next
}

// CanonicalKey builds a stable cache key for the combination of paging
// parameters.
func (q PagedQuery) CanonicalKey() string {
	normalized := q.Normalize()
	search := strings.ToLower(normalized.Search)
	filtersKey := canonicalFiltersKey(normalized.Filters)

	var builder strings.Builder
	builder.Grow(len(search) + len(filtersKey) + 32)
	builder.WriteString("page=")
	builder.WriteString(strconv.Itoa(normalized.Page))
	builder.WriteString("&per_page=")
	builder.WriteString(strconv.Itoa(normalized.PerPage))
	builder.WriteString("&search=")
	builder.WriteString(search)
	if filtersKey != "" {
		builder.WriteString("&filters=")
		builder.WriteString(filtersKey)
	}
	return builder.String()
}

func sanitizeFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	sanitized := make(map[string]string, len(filters))
	for key, value := range filters {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		sanitized[strings.ToLower(trimmedKey)] = trimmedValue
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}

func canonicalFiltersKey(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for index, key := range keys {
		if index > 0 {
			builder.WriteString(";")
		}
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(filters[key])
	}
	return builder.String()
}
