package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Item is a single record in one of the church collections: a blog post,
// a choir song, a meeting's minutes, a member, and so on. Collection-specific
// attributes live in Fields.
type Item struct {
	ID         string          `json:"id"`
	Collection Collection      `json:"collection"`
	Title      string          `json:"title"`
	Content    string          `json:"content,omitempty"`
	Author     string          `json:"author,omitempty"`
	Category   string          `json:"category,omitempty"`
	Date       time.Time       `json:"date"` // listing timestamp; the date filter matches on its calendar day
	CreatedAt  time.Time       `json:"created_at"`
	CreatedBy  string          `json:"created_by,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Fields     json.RawMessage `json:"fields,omitempty"`

	// Populated by queries, not stored in the items table.
	Comments []*Comment `json:"comments,omitempty"`
}

// FieldPrefix selects a key inside Item.Fields in a designated field name.
const FieldPrefix = "fields."

// Field resolves a designated field name to its string value. Built-in
// names are "title", "content", "author" and "category"; "fields.<key>"
// reads a string or number from Fields. Empty and missing values report
// false.
func (it *Item) Field(name string) (string, bool) {
	if it == nil {
		return "", false
	}
	var v string
	switch name {
	case "title":
		v = it.Title
	case "content":
		v = it.Content
	case "author":
		v = it.Author
	case "category":
		v = it.Category
	default:
		key, ok := strings.CutPrefix(name, FieldPrefix)
		if !ok {
			return "", false
		}
		v = it.extraField(key)
	}
	return v, v != ""
}

func (it *Item) extraField(key string) string {
	if len(it.Fields) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(it.Fields, &m); err != nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	}
	return ""
}

// FieldMap decodes Fields into a map. A missing or non-object value
// yields an empty map.
func (it *Item) FieldMap() map[string]any {
	m := make(map[string]any)
	if len(it.Fields) > 0 {
		_ = json.Unmarshal(it.Fields, &m)
	}
	return m
}
