package view

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Pager describes the prev/next controls of a server-paginated list
type Pager struct {
	Current int
	Total   int
}

// NewPager validates the cursor pair taken from an API response. total may
// be 0 for an empty list; otherwise current must lie in [1, total].
func NewPager(current, total int) (Pager, error) {
	switch {
	case total < 0:
		return Pager{}, fmt.Errorf("pager: negative total pages %d", total)
	case total == 0 && current > 1:
		return Pager{}, fmt.Errorf("pager: page %d of empty list", current)
	case total > 0 && (current < 1 || current > total):
		return Pager{}, fmt.Errorf("pager: page %d outside 1..%d", current, total)
	}
	if current < 1 {
		current = 1
	}
	return Pager{Current: current, Total: total}, nil
}

// Shown reports whether the controls are rendered at all
func (p Pager) Shown() bool { return p.Total > 1 }

func (p Pager) HasPrev() bool { return p.Current > 1 }
func (p Pager) HasNext() bool { return p.Current < p.Total }
func (p Pager) Prev() int     { return p.Current - 1 }
func (p Pager) Next() int     { return p.Current + 1 }

// Label is the "Page X of Y" caption
func (p Pager) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Current, p.Total)
}

// ListState is the per-view cursor and filter of a list page. It travels in
// the query string, so two tabs never share it.
type ListState struct {
	Page   int
	Query  string
	Filter string
}

// ParseListState reads page, q and filter. Missing or invalid pages become 1.
func ParseListState(v url.Values) ListState {
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return ListState{
		Page:   page,
		Query:  strings.TrimSpace(v.Get("q")),
		Filter: strings.TrimSpace(v.Get("filter")),
	}
}

// WithPage returns a copy pointing at page
func (s ListState) WithPage(page int) ListState {
	s.Page = page
	return s
}

// URL renders s as a link to path. Page 1 and empty values are omitted.
func (s ListState) URL(path string) string {
	v := url.Values{}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.Filter != "" {
		v.Set("filter", s.Filter)
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
