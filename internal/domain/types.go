package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination carries 1-indexed paging params and totals.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination clamps page/limit to sane values.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// WithTotal fills Total and Pages = ceil(total/limit).
func (p Pagination) WithTotal(total int) Pagination {
	p.Total = total
	p.Pages = 0
	if p.Limit > 0 {
		p.Pages = (total + p.Limit - 1) / p.Limit
	}
	return p
}

// Page is a slice of results plus its pagination block.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
