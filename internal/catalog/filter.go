// Package catalog implements the product listing core: the canonical filter
// state, its query-string representation, and the synchronizer that keeps
// filter, fetches, and location in agreement without feedback loops.
package catalog

import (
	"net/url"
	"strconv"
)

// Sort fields and orders accepted by the backend.
const (
	SortByName   = "name"
	SortByPrice  = "price"
	SortByRating = "rating"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Filter is the canonical, serializable listing state. It round-trips
// through a query string: Encode then DecodeFilter yields an equal value.
type Filter struct {
	Search    string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
}

// DefaultFilter is the state of a freshly opened listing.
func DefaultFilter() Filter {
	return Filter{SortBy: SortByName, SortOrder: SortAsc, Page: 1}
}

// Normalize fills zero values with defaults and clamps the page to >= 1.
func (f Filter) Normalize() Filter {
	if f.SortBy == "" {
		f.SortBy = SortByName
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	if f.Page < 1 {
		f.Page = 1
	}
	return f
}

// Encode renders the canonical query values. Empty search/category and unset
// price bounds are omitted entirely, never written as empty strings.
func (f Filter) Encode() url.Values {
	f = f.Normalize()
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	q.Set("sort_by", f.SortBy)
	q.Set("sort_order", f.SortOrder)
	q.Set("page", strconv.Itoa(f.Page))
	return q
}

// Signature is the canonical string form of the filter, used to decide
// whether a location write is needed. url.Values.Encode sorts keys, so equal
// filters always produce equal signatures.
func (f Filter) Signature() string {
	return f.Encode().Encode()
}

// DecodeFilter parses query values into a filter, ignoring unknown keys and
// unparseable numbers.
func DecodeFilter(q url.Values) Filter {
	f := Filter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	if v := q.Get("min_price"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			f.MinPrice = &n
		}
	}
	if v := q.Get("max_price"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			f.MaxPrice = &n
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	return f.Normalize()
}

// Equal reports whether two filters encode to the same canonical query.
func (f Filter) Equal(other Filter) bool {
	return f.Signature() == other.Signature()
}
