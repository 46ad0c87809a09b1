package services

// Pagination bounds
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination describes one page of a listing
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination normalizes a 1-based page and clamps limit to [1, MaxPageLimit].
// A zero limit means the default.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// SetTotal records the total number of rows and derives the page count
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.TotalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Offset is the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
