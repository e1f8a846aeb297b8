package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/flock/internal/listview"
)

// ViewNamespace is the config namespace holding saved views.
const ViewNamespace = "view"

// SavedView is a named listing query stored in config under "view:<name>":
// a collection plus the predicate bag and page size to list it with.
type SavedView struct {
	Collection Collection `json:"collection"`
	Category   string     `json:"category,omitempty"`
	Date       string     `json:"date,omitempty"` // YYYY-MM-DD
	Query      string     `json:"q,omitempty"`
	PerPage    int        `json:"per_page,omitempty"`
	Sort       string     `json:"sort,omitempty"`
}

// ParseSavedView decodes and validates a stored view.
func ParseSavedView(raw json.RawMessage) (*SavedView, error) {
	var v SavedView
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse view: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks the view's collection, date and page size.
func (v *SavedView) Validate() error {
	if !v.Collection.IsValid() {
		return fmt.Errorf("view: unknown collection %q", v.Collection)
	}
	if v.Date != "" {
		if _, err := ParseDay(v.Date); err != nil {
			return fmt.Errorf("view: invalid date %q", v.Date)
		}
	}
	if v.PerPage < 0 {
		return fmt.Errorf("view: per_page must be positive")
	}
	return nil
}

// State converts the view into a listing state on page 1. perPage is used
// when the view does not set its own page size.
func (v *SavedView) State(perPage int) (listview.State, error) {
	if v.PerPage > 0 {
		perPage = v.PerPage
	}
	st := listview.NewState(perPage)
	st.SetCategory(v.Category)
	st.SetText(strings.TrimSpace(v.Query))
	if v.Date != "" {
		d, err := ParseDay(v.Date)
		if err != nil {
			return listview.State{}, fmt.Errorf("view: invalid date %q", v.Date)
		}
		st.SetDate(d)
	}
	return st, nil
}
