package pagination

import (
	"strconv"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any listing can request.
	MaxLimit = 100
)

// Params holds page-number pagination inputs for listing requests.
type Params struct {
	Page  int
	Limit int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeTotal reports at least one page; the backend sends 0 for empty listings.
func NormalizeTotal(totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	return totalPages
}

// ClampPage keeps page inside [1, totalPages].
func ClampPage(page, totalPages int) int {
	totalPages = NormalizeTotal(totalPages)
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Normalize returns params safe to send upstream.
func (p Params) Normalize() Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Params{Page: page, Limit: NormalizeLimit(p.Limit)}
}

// Query renders the params as the page/limit query values the backend expects.
func (p Params) Query() map[string]string {
	n := p.Normalize()
	return map[string]string{
		"page":  strconv.Itoa(n.Page),
		"limit": strconv.Itoa(n.Limit),
	}
}
