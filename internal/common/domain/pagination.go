package domain

// CurrencyTHB is the default settlement currency for campground payments.
const CurrencyTHB = "thb"

// PaginatedResult is a page of items plus the total across all pages.
type PaginatedResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// NewPaginatedResult builds a PaginatedResult, never returning a nil slice.
func NewPaginatedResult[T any](items []T, total int64, page, limit int) PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedResult[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// HasNext reports whether another page follows this one.
func (p PaginatedResult[T]) HasNext() bool {
	return int64(p.Page*p.Limit) < p.Total
}
