package listview

import "errors"

// ErrNotFound is returned by a Source when Update finds no matching item.
var ErrNotFound = errors.New("listview: item not found")
