package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"foodgram/internal/model"
)

// Pager parses page/limit query parameters and builds the paginated
// response envelope.
type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

// Parse reads the 1-based page number and page size from r. A missing or
// malformed limit falls back to the default and an oversized one is
// clamped to the maximum. Pages whose end offset does not fit in an int
// are rejected.
func (p Pager) Parse(r *http.Request) (model.Pagination, error) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return model.Pagination{}, model.NewValidationError("Invalid page",
				map[string]string{"page": "must be a positive integer"})
		}
		page = n
	}

	limit := p.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	if page > math.MaxInt/limit {
		return model.Pagination{}, model.NewValidationError("Invalid page",
			map[string]string{"page": "is out of range"})
	}

	return model.Pagination{Page: page, Limit: limit}, nil
}

// newPage wraps results in the {count, next, previous, results} envelope.
// Next and previous are absolute URLs to the neighbouring pages of r.
func newPage[T any](r *http.Request, page model.Pagination, count int, results []T) model.Page[T] {
	if results == nil {
		results = []T{}
	}

	out := model.Page[T]{Count: count, Results: results}
	if page.Page*page.Limit < count {
		next := pageURL(r, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(r, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
