// Package paginate implements page-number pagination for list endpoints.
package paginate

import (
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 20
)

type Params struct {
	Page int
	Size int
}

// Parse reads raw page and page_size query values. Bad values fall back to defaults
// and the size is capped at MaxPageSize.
func Parse(page, size string) Params {
	p := Params{Page: 1, Size: DefaultPageSize}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 {
		p.Size = min(n, MaxPageSize)
	}
	return p
}

func (p Params) Offset() int { return (p.Page - 1) * p.Size }

// Scope applies LIMIT/OFFSET to a gorm query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Size)
}

type Envelope[T any] struct {
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	Count       int64 `json:"count"` // rows across all pages
	Results     []T   `json:"results"`
}

func New[T any](p Params, total int64, items []T) Envelope[T] {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages == 0 {
		pages = 1
	}
	if items == nil {
		items = []T{}
	}
	return Envelope[T]{
		TotalPages:  pages,
		CurrentPage: p.Page,
		PageSize:    p.Size,
		Count:       total,
		Results:     items,
	}
}
