package shared

// DefaultPageSize matches the mini-program's history page size.
const DefaultPageSize = 5

// PageRequest is a 1-based page request.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	return p
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}
