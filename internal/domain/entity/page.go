package entity

// PageResult is the response envelope of a metrics query.
type PageResult struct {
	Metrics    []MetricRow `json:"metrics"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// TotalPagesFor returns ceil(total/size). It is 0 for an empty result set.
func TotalPagesFor(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Normalize fills pagination fields the API left out, using the request state.
func (p PageResult) Normalize(q QueryState) PageResult {
	if p.Page <= 0 {
		p.Page = q.Page
	}
	if p.PageSize <= 0 {
		p.PageSize = q.PageSize
	}
	if p.TotalPages <= 0 {
		p.TotalPages = TotalPagesFor(p.TotalCount, p.PageSize)
	}
	if p.Metrics == nil {
		p.Metrics = []MetricRow{}
	}
	return p
}

// HasCost reports whether any row carries the cost field.
func (p PageResult) HasCost() bool {
	for _, m := range p.Metrics {
		if m.HasCost() {
			return true
		}
	}
	return false
}

// FirstRecord is the 1-based index of the first row on the page, 0 when empty.
func (p PageResult) FirstRecord() int {
	if p.TotalCount == 0 || p.Page < 1 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// LastRecord is the 1-based index of the last row on the page.
func (p PageResult) LastRecord() int {
	last := p.Page * p.PageSize
	if last > p.TotalCount {
		return p.TotalCount
	}
	return last
}

// PageWindow returns up to size consecutive page numbers centred on the current page.
func (p PageResult) PageWindow(size int) []int {
	if p.TotalPages <= 0 || size <= 0 {
		return nil
	}
	n := size
	if p.TotalPages < n {
		n = p.TotalPages
	}
	start := p.Page - size/2
	if start > p.TotalPages-size+1 {
		start = p.TotalPages - size + 1
	}
	if start < 1 {
		start = 1
	}
	pages := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pages = append(pages, start+i)
	}
	return pages
}
