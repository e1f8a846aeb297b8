package listview

import (
	"context"
	"time"
)

// State is the caller-owned listing state: a predicate bag and a cursor.
// Every filter setter moves the cursor back to page 1 in the same step, so a
// narrowed result set never lands the caller on an empty page. Only SetPage
// moves the cursor without touching the filters.
type State struct {
	Predicates Predicates `json:"predicates"`
	Cursor     Cursor     `json:"cursor"`
}

// NewState returns a state on page 1 with the given page size.
func NewState(perPage int) State {
	return State{Cursor: Cursor{Page: 1, PerPage: perPage}.normalize()}
}

func (s *State) SetCategory(category string) {
	s.Predicates.Category = category
	s.Cursor.Page = 1
}

func (s *State) SetDate(day time.Time) {
	s.Predicates.Date = &day
	s.Cursor.Page = 1
}

func (s *State) ClearDate() {
	s.Predicates.Date = nil
	s.Cursor.Page = 1
}

func (s *State) SetText(q string) {
	s.Predicates.Text = q
	s.Cursor.Page = 1
}

// SetPerPage changes the page size. The old page number is meaningless
// under a different size, so it resets too.
func (s *State) SetPerPage(n int) {
	s.Cursor.PerPage = n
	s.Cursor.Page = 1
}

// SetPage moves the cursor. Out-of-range pages are allowed and yield an
// empty page.
func (s *State) SetPage(n int) {
	s.Cursor.Page = n
}

// Reset clears every predicate and returns to page 1.
func (s *State) Reset() {
	s.Predicates = Predicates{}
	s.Cursor.Page = 1
}

// Source is the data-access collaborator a listing consumes. Swapping a
// fixture-backed Source for a database-backed one changes nothing about the
// filtering contract.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
}

// Lister binds a Source to the Schema its items are filtered with.
type Lister[T any] struct {
	Source Source[T]
	Schema Schema[T]
}

// List fetches the full collection and returns the page selected by st.
// Only the Source can fail.
func (l Lister[T]) List(ctx context.Context, st State) (Page[T], error) {
	items, err := l.Source.Fetch(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	return View(items, l.Schema, st.Predicates, st.Cursor), nil
}
