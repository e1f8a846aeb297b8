package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/alfredjeanlab/flock/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanItem scans a single row into a model.Item.
// The row must contain columns in the order defined by itemColumns.
func scanItem(row scannable) (*model.Item, error) {
	it, _, err := scanItemRow(row, false)
	return it, err
}

// scanItemWithTotal scans a row that has a leading total_count column
// followed by the standard item columns. Used by queryListItems with
// COUNT(*) OVER().
func scanItemWithTotal(row scannable) (*model.Item, int, error) {
	return scanItemRow(row, true)
}

func scanItemRow(row scannable, withTotal bool) (*model.Item, int, error) {
	var total int
	var it model.Item
	var (
		author    sql.NullString
		category  sql.NullString
		createdBy sql.NullString
		fields    []byte
	)

	dest := []any{
		&it.ID,
		&it.Collection,
		&it.Title,
		&it.Content,
		&author,
		&category,
		&it.Date,
		&it.CreatedAt,
		&createdBy,
		&it.UpdatedAt,
		&fields,
	}
	if withTotal {
		dest = append([]any{&total}, dest...)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, 0, err
	}

	it.Author = author.String
	it.Category = category.String
	it.CreatedBy = createdBy.String
	if len(fields) > 0 {
		it.Fields = json.RawMessage(fields)
	}

	return &it, total, nil
}

// scanComment scans a single row into a model.Comment.
func scanComment(row scannable) (*model.Comment, error) {
	var c model.Comment
	var author sql.NullString
	err := row.Scan(
		&c.ID,
		&c.ItemID,
		&author,
		&c.Text,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Author = author.String
	return &c, nil
}

// scanComments scans multiple rows into a slice of model.Comment pointers.
func scanComments(rows *sql.Rows) ([]*model.Comment, error) {
	var comments []*model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.ItemID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanConfig scans a single row into a model.Config.
func scanConfig(row scannable) (*model.Config, error) {
	var c model.Config
	var value []byte
	err := row.Scan(&c.Key, &value, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Value = json.RawMessage(value)
	return &c, nil
}

// scanConfigs scans multiple rows into a slice of model.Config pointers.
func scanConfigs(rows *sql.Rows) ([]*model.Config, error) {
	var configs []*model.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
