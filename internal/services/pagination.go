package services

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page describes one slice of a paginated listing.
type Page struct {
	CurrentPage int
	PageSize    int
	TotalCount  int64
	TotalPages  int
}

func (p Page) HasNext() bool     { return p.CurrentPage < p.TotalPages }
func (p Page) HasPrevious() bool { return p.CurrentPage > 1 }

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func newPage(page, limit int, total int64) Page {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Page{CurrentPage: page, PageSize: limit, TotalCount: total, TotalPages: pages}
}
