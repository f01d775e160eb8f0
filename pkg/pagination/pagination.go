package pagination

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxOffset keeps OFFSET within a 32-bit range on every backend.
	MaxOffset = math.MaxInt32
)

// Params are page-based pagination inputs after clamping.
type Params struct {
	Page  int
	Limit int
}

// Clamp normalizes raw page/limit values: page < 1 becomes 1, limit < 1
// becomes the default and anything above MaxLimit is capped. Page is capped
// so that Offset never exceeds MaxOffset.
func Clamp(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := MaxOffset/limit + 1; page > maxPage {
		page = maxPage
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Page is one slice of a larger result set.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
