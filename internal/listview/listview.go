// Package listview implements the filter/paginate contract shared by every
// listing in flock: blog posts, songs, meetings, gallery items, members,
// resources, testimonies and Sabbath reports.
//
// The engine is a pure function of (collection, predicates, cursor). It never
// mutates its input, never returns an error, and treats absent fields as
// non-matching. Callers own the mutable listing state; see State for the
// page-reset rule that accompanies every filter change.
package listview

import (
	"strings"
	"time"
)

// DefaultPerPage is used when a cursor carries a non-positive page size.
const DefaultPerPage = 10

// AllCategories is the sentinel category value meaning "no restriction".
// Its lower-case spelling is accepted too; other casings are literal.
const AllCategories = "All"

// Predicates is the predicate bag of a listing. The zero value matches
// every item.
type Predicates struct {
	Category string     `json:"category,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Text     string     `json:"text,omitempty"`
}

// Active reports whether at least one predicate restricts the result.
func (p Predicates) Active() bool {
	return categoryActive(p.Category) || p.Date != nil || strings.TrimSpace(p.Text) != ""
}

// Cursor selects a page of a filtered listing. Page is 1-based.
type Cursor struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// normalize maps non-positive values to their defaults.
func (c Cursor) normalize() Cursor {
	if c.Page < 1 {
		c.Page = 1
	}
	if c.PerPage < 1 {
		c.PerPage = DefaultPerPage
	}
	return c
}

// Schema designates which fields of T the predicates look at. Each accessor
// reports whether the field is present; an absent field never matches.
// A nil accessor is the same as an always-absent field.
type Schema[T any] struct {
	Category  func(T) (string, bool)
	Timestamp func(T) (time.Time, bool)
	Search    []func(T) (string, bool)
}

// Page is one page of a filtered listing plus its metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
}

// ApplyFilters returns the items that pass every active predicate, in input
// order. Predicates are evaluated category first, then date, then free text.
func ApplyFilters[T any](items []T, schema Schema[T], p Predicates) []T {
	tests := make([]func(T) bool, 0, 3)
	if categoryActive(p.Category) {
		tests = append(tests, categoryTest(schema.Category, p.Category))
	}
	if p.Date != nil {
		tests = append(tests, dateTest(schema.Timestamp, *p.Date))
	}
	if q := strings.TrimSpace(p.Text); q != "" {
		tests = append(tests, textTest(schema.Search, strings.ToLower(q)))
	}

	out := make([]T, 0, len(items))
outer:
	for _, it := range items {
		for _, test := range tests {
			if !test(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// Paginate slices one page out of an already filtered listing. A page past
// the end yields an empty Items slice, never an error.
func Paginate[T any](items []T, c Cursor) Page[T] {
	c = c.normalize()
	total := len(items)
	pages := total / c.PerPage
	if total%c.PerPage != 0 {
		pages++
	}
	pg := Page[T]{
		Items:      []T{},
		TotalItems: total,
		TotalPages: pages,
		Page:       c.Page,
		PerPage:    c.PerPage,
	}

	// Guard the multiplication against huge page numbers.
	if c.Page > pg.TotalPages {
		return pg
	}
	start := (c.Page - 1) * c.PerPage
	end := total
	if c.PerPage < total-start {
		end = start + c.PerPage
	}
	pg.Items = append(pg.Items, items[start:end]...)
	return pg
}

// View filters then paginates.
func View[T any](items []T, schema Schema[T], p Predicates, c Cursor) Page[T] {
	return Paginate(ApplyFilters(items, schema, p), c)
}

func categoryActive(v string) bool {
	return v != "" && v != AllCategories && v != strings.ToLower(AllCategories)
}

func categoryTest[T any](field func(T) (string, bool), want string) func(T) bool {
	return func(it T) bool {
		if field == nil {
			return false
		}
		got, ok := field(it)
		return ok && got == want
	}
}

func dateTest[T any](field func(T) (time.Time, bool), day time.Time) func(T) bool {
	y, m, d := day.Date()
	loc := day.Location()
	return func(it T) bool {
		if field == nil {
			return false
		}
		ts, ok := field(it)
		if !ok || ts.IsZero() {
			return false
		}
		ty, tm, td := ts.In(loc).Date()
		return ty == y && tm == m && td == d
	}
}

func textTest[T any](fields []func(T) (string, bool), query string) func(T) bool {
	return func(it T) bool {
		for _, f := range fields {
			if f == nil {
				continue
			}
			if v, ok := f(it); ok && strings.Contains(strings.ToLower(v), query) {
				return true
			}
		}
		return false
	}
}
