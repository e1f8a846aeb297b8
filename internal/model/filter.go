package model

// ItemFilter selects items at the store level. Listing predicates
// (category, date, free text) are applied by the listview engine on top.
type ItemFilter struct {
	Collection Collection `json:"collection,omitempty"`
	Sort       string     `json:"sort,omitempty"`  // e.g. "-date", "title"; prefix "-" = descending
	Limit      int        `json:"limit,omitempty"` // 0 = no limit
	Offset     int        `json:"offset,omitempty"`
}
