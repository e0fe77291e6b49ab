package pagination

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

// Pagination bounds a list response. Zero values fall back to page 1
// with the default size; PageSize is clamped to MaxPageSize.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	HasMore    bool  `json:"has_more"`
}

// Paginate slices a fully filtered and ordered collection into one page.
// An out-of-range page yields an empty slice, never an error.
func Paginate[T any](items []T, p Pagination) ([]T, PageInfo) {
	p = p.normalized()
	total := len(items)

	start := (p.Page - 1) * p.PageSize
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	return items[start:end], PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: int64(total),
		HasMore:    end < total,
	}
}
