package shared

import "time"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Filter is the list query every repository accepts. Filters holds
// per-resource criteria (status, client_id, ...) keyed by column name;
// From and To bound the resource's main date.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
	From     *time.Time
	To       *time.Time
}

// DefaultFilter is page 1, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// Offset is the row offset of the page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit clamps PageSize to 1..100, defaulting to 20
func (f Filter) Limit() int {
	switch {
	case f.PageSize <= 0:
		return defaultPageSize
	case f.PageSize > maxPageSize:
		return maxPageSize
	}
	return f.PageSize
}
