package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/flock/internal/model"
)

// itemColumns is the column list used for SELECT statements on the items table.
const itemColumns = `id, collection, title, content, author, category, date,
	created_at, created_by, updated_at, fields`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateItem(ctx context.Context, db executor, it *model.Item) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO items (
			id, collection, title, content, author, category, date,
			created_at, created_by, updated_at, fields
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11
		)`,
		it.ID,
		string(it.Collection),
		it.Title,
		it.Content,
		nullString(it.Author),
		nullString(it.Category),
		it.Date,
		it.CreatedAt,
		nullString(it.CreatedBy),
		it.UpdatedAt,
		jsonbBytes(it.Fields),
	)
	return err
}

func queryGetItem(ctx context.Context, db executor, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	it, err := scanItem(row)
	if err != nil {
		return nil, err
	}

	comments, err := queryGetComments(ctx, db, id)
	if err != nil {
		return nil, err
	}
	it.Comments = comments

	return it, nil
}

func queryListItems(ctx context.Context, db executor, filter model.ItemFilter) ([]*model.Item, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Collection != "" {
		whereClauses = append(whereClauses, "collection = "+nextArg())
		args = append(args, string(filter.Collection))
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	// id breaks ties so store order is stable across calls.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + itemColumns + " FROM items" + whereSQL +
		" ORDER BY " + parseSortClause(filter.Sort) + ", id ASC"

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*model.Item
	var total int
	for rows.Next() {
		it, t, err := scanItemWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan items: %w", err)
		}
		total = t
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan items: %w", err)
	}

	return items, total, nil
}

func queryUpdateItem(ctx context.Context, db executor, it *model.Item) error {
	return db.QueryRowContext(ctx, `
		UPDATE items SET
			title = $2,
			content = $3,
			author = $4,
			category = $5,
			date = $6,
			updated_at = NOW(),
			fields = $7
		WHERE id = $1
		RETURNING updated_at`,
		it.ID,
		it.Title,
		it.Content,
		nullString(it.Author),
		nullString(it.Category),
		it.Date,
		jsonbBytes(it.Fields),
	).Scan(&it.UpdatedAt)
}

func queryDeleteItem(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryCountByCollection(ctx context.Context, db executor) (map[model.Collection]int, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT collection, COUNT(*)
		FROM items
		GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Collection]int)
	for rows.Next() {
		var (
			c string
			n int
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[model.Collection(c)] = n
	}
	return counts, rows.Err()
}

func queryAddComment(ctx context.Context, db executor, c *model.Comment) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO comments (item_id, author, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.ItemID, c.Author, c.Text,
	).Scan(&c.ID, &c.CreatedAt)
}

func queryGetComments(ctx context.Context, db executor, itemID string) ([]*model.Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, item_id, author, text, created_at
		FROM comments
		WHERE item_id = $1
		ORDER BY created_at ASC`,
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, item_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.ItemID, e.Actor, []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, itemID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, item_id, actor, payload, created_at
		FROM events
		WHERE item_id = $1
		ORDER BY created_at ASC`,
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func querySetConfig(ctx context.Context, db executor, c *model.Config) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO configs (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.Key, []byte(c.Value),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func queryGetConfig(ctx context.Context, db executor, key string) (*model.Config, error) {
	row := db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key = $1`, key)
	return scanConfig(row)
}

func queryListConfigs(ctx context.Context, db executor, namespace string) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key LIKE $1 || ':%'
		ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryListAllConfigs(ctx context.Context, db executor) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryDeleteConfig(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM configs WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// parseSortClause maps a sort key to an ORDER BY expression. Unknown
// columns fall back to newest first.
func parseSortClause(sort string) string {
	if sort == "" {
		return "date DESC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"date": true, "title": true, "created_at": true, "updated_at": true,
	}
	if !allowed[col] {
		return "date DESC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
