package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// itemRowColumns is the column list for scanItem results.
var itemRowColumns = []string{
	"id", "collection", "title", "content", "author", "category", "date",
	"created_at", "created_by", "updated_at", "fields",
}

// itemWithTotalColumns is the column list for queryListItems results (total_count + item columns).
var itemWithTotalColumns = append([]string{"total_count"}, itemRowColumns...)

var commentColumns = []string{"id", "item_id", "author", "text", "created_at"}

// addItemWithTotalRow adds a minimal item row with a leading total_count to a sqlmock.Rows.
func addItemWithTotalRow(rows *sqlmock.Rows, total int, id, collection, title string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(
		total,
		id, collection, title, "", nil, nil, now,
		now, nil, now, nil,
	)
}

func TestParseSortClause(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"", "date DESC"},
		{"date", "date ASC"},
		{"-date", "date DESC"},
		{"evil_column", "date DESC"},
		{"-evil_column; DROP TABLE items", "date DESC"},
	} {
		if got := parseSortClause(tc.input); got != tc.want {
			t.Errorf("parseSortClause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	// All allowed columns.
	for _, col := range []string{"date", "title", "created_at", "updated_at"} {
		if got := parseSortClause(col); got != col+" ASC" {
			t.Errorf("parseSortClause(%q) = %q, want %q", col, got, col+" ASC")
		}
		if got := parseSortClause("-" + col); got != col+" DESC" {
			t.Errorf("parseSortClause(-%q) = %q, want %q", col, got, col+" DESC")
		}
	}
}

func TestScanHelpers(t *testing.T) {
	// nullString
	if nullString("").Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("hello"); !ns.Valid || ns.String != "hello" {
		t.Errorf("nullString(\"hello\") = %v", ns)
	}

	// jsonbBytes
	if jsonbBytes(nil) != nil {
		t.Error("jsonbBytes(nil) should be nil")
	}
	if jsonbBytes(json.RawMessage{}) != nil {
		t.Error("jsonbBytes({}) should be nil")
	}
	input := json.RawMessage(`{"key":"value"}`)
	if string(jsonbBytes(input)) != `{"key":"value"}` {
		t.Errorf("jsonbBytes = %s", jsonbBytes(input))
	}
}

func TestQueryCreateItem(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	item := &model.Item{
		ID: "sg-test1", Collection: model.CollectionSong, Title: "Amazing Grace",
		Category: "Youth Choir", Date: now, CreatedAt: now, UpdatedAt: now,
		Fields: json.RawMessage(`{"key":"G"}`),
	}
	mock.ExpectExec("INSERT INTO items").
		WithArgs(
			"sg-test1", "song", "Amazing Grace", "", nil, "Youth Choir", now,
			now, nil, now, []byte(`{"key":"G"}`),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateItem(context.Background(), db, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryGetItem(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(itemRowColumns).AddRow(
		"bl-test1", "blog_post", "Welcome", "Hello church", "Pastor", "News", now,
		now, "secretary", now, nil,
	)
	mock.ExpectQuery("SELECT .+ FROM items WHERE id = \\$1").WithArgs("bl-test1").WillReturnRows(rows)
	mock.ExpectQuery("SELECT .+ FROM comments WHERE item_id = \\$1").WithArgs("bl-test1").
		WillReturnRows(sqlmock.NewRows(commentColumns).AddRow(int64(1), "bl-test1", "Ama", "Amen", now))

	item, err := queryGetItem(context.Background(), db, "bl-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != "bl-test1" || item.Collection != model.CollectionBlog || item.Author != "Pastor" {
		t.Fatalf("got id=%q collection=%q author=%q", item.ID, item.Collection, item.Author)
	}
	if item.CreatedBy != "secretary" || item.Fields != nil {
		t.Fatalf("got created_by=%q fields=%s", item.CreatedBy, item.Fields)
	}
	if len(item.Comments) != 1 || item.Comments[0].Text != "Amen" {
		t.Fatalf("expected one comment, got %v", item.Comments)
	}
}

func TestQueryGetItem_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM items WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetItem(context.Background(), db, "nonexistent")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryUpdateItem(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	later := now.Add(time.Minute)
	item := &model.Item{
		ID: "mt-1", Collection: model.CollectionMeeting, Title: "Elders meeting",
		Content: "Minutes", Category: "Elders", Date: now, UpdatedAt: now,
	}
	mock.ExpectQuery("UPDATE items SET").
		WithArgs("mt-1", "Elders meeting", "Minutes", nil, "Elders", now, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(later))

	if err := queryUpdateItem(context.Background(), db, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at not refreshed: %v", item.UpdatedAt)
	}
}

func TestQueryUpdateItem_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	item := &model.Item{ID: "nonexistent", Title: "Test"}
	mock.ExpectQuery("UPDATE items SET").WillReturnError(sql.ErrNoRows)

	if err := queryUpdateItem(context.Background(), db, item); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryDeleteItem(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM items WHERE id = \\$1").WithArgs("bl-del1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteItem(context.Background(), db, "bl-del1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteItem_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM items WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteItem(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryCountByCollection(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT collection, COUNT\\(\\*\\) FROM items GROUP BY collection").
		WillReturnRows(sqlmock.NewRows([]string{"collection", "count"}).
			AddRow("song", 12).
			AddRow("member", 240))

	counts, err := queryCountByCollection(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[model.CollectionSong] != 12 || counts[model.CollectionMember] != 240 || counts[model.CollectionBlog] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestQueryListItems(t *testing.T) {
	now := time.Now().UTC()

	for _, tc := range []struct {
		name      string
		filter    model.ItemFilter
		queryPat  string
		args      []driver.Value
		wantCount int
		wantTotal int
	}{
		{
			name:      "NoFilter",
			filter:    model.ItemFilter{},
			queryPat:  "SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM items ORDER BY date DESC, id ASC",
			wantCount: 2,
			wantTotal: 2,
		},
		{
			name:      "FilterByCollection",
			filter:    model.ItemFilter{Collection: model.CollectionSong},
			queryPat:  "SELECT .+ FROM items WHERE collection = \\$1 ORDER BY",
			args:      []driver.Value{"song"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "WithLimitAndOffset",
			filter:    model.ItemFilter{Limit: 10, Offset: 5},
			queryPat:  "SELECT .+ FROM items ORDER BY .+ LIMIT \\$1 OFFSET \\$2",
			args:      []driver.Value{10, 5},
			wantCount: 1,
			wantTotal: 20,
		},
		{
			name:     "WithSort",
			filter:   model.ItemFilter{Sort: "title"},
			queryPat: "SELECT .+ FROM items ORDER BY title ASC, id ASC",
		},
		{
			name:      "CombinedFilters",
			filter:    model.ItemFilter{Collection: model.CollectionBlog, Limit: 5, Offset: 10},
			queryPat:  "SELECT .+ FROM items WHERE collection = \\$1 ORDER BY .+ LIMIT \\$2 OFFSET \\$3",
			args:      []driver.Value{"blog_post", 5, 10},
			wantCount: 1,
			wantTotal: 3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			eq := mock.ExpectQuery(tc.queryPat)
			if len(tc.args) > 0 {
				eq.WithArgs(tc.args...)
			}
			r := sqlmock.NewRows(itemWithTotalColumns)
			for i := range tc.wantCount {
				addItemWithTotalRow(r, tc.wantTotal, fmt.Sprintf("bl-%d", i+1), "blog_post", "T", now)
			}
			eq.WillReturnRows(r)

			items, total, err := queryListItems(context.Background(), db, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(items) != tc.wantCount {
				t.Fatalf("expected %d items, got %d", tc.wantCount, len(items))
			}
			if total != tc.wantTotal {
				t.Fatalf("expected total=%d, got %d", tc.wantTotal, total)
			}
		})
	}
}

func TestQueryListItems_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM items").WillReturnError(errors.New("connection reset"))

	if _, _, err := queryListItems(context.Background(), db, model.ItemFilter{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestScanItem_WithOptionalFields(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	date := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(itemRowColumns).AddRow(
		"mb-full", "member", "Ruth Mensah", "Usher", "Secretary", "Mensah", date,
		now, "secretary", now, []byte(`{"email":"ruth@example.org"}`),
	)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	item, err := scanItem(db.QueryRow("SELECT"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Category != "Mensah" || item.Author != "Secretary" || item.Content != "Usher" {
		t.Fatalf("got category=%q author=%q content=%q", item.Category, item.Author, item.Content)
	}
	if !item.Date.Equal(date) {
		t.Fatalf("got date=%v", item.Date)
	}
	if v, ok := item.Field("fields.email"); !ok || v != "ruth@example.org" {
		t.Fatalf("got fields=%s", item.Fields)
	}
}

func TestQueryAddComment(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	comment := &model.Comment{ItemID: "bl-a", Author: "Ama", Text: "Praise God"}
	mock.ExpectQuery("INSERT INTO comments").
		WithArgs("bl-a", "Ama", "Praise God").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	if err := queryAddComment(context.Background(), db, comment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comment.ID != 1 || comment.CreatedAt.IsZero() {
		t.Fatalf("got id=%d created_at=%v", comment.ID, comment.CreatedAt)
	}
}

func TestQueryGetComments(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(commentColumns).
		AddRow(int64(1), "bl-a", "Ama", "First", now).
		AddRow(int64(2), "bl-a", nil, "Second", now)
	mock.ExpectQuery("SELECT .+ FROM comments WHERE item_id = \\$1").WithArgs("bl-a").WillReturnRows(rows)

	comments, err := queryGetComments(context.Background(), db, "bl-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Author != "Ama" || comments[1].Author != "" {
		t.Fatalf("got authors=%q %q", comments[0].Author, comments[1].Author)
	}
}

func TestQueryRecordEvent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	event := &model.Event{
		Topic: "flock.item.created", ItemID: "bl-a", Actor: "secretary",
		Payload: json.RawMessage(`{"item":{"id":"bl-a"}}`),
	}
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("flock.item.created", "bl-a", "secretary", []byte(`{"item":{"id":"bl-a"}}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, now))

	if err := queryRecordEvent(context.Background(), db, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.ID != 1 {
		t.Fatalf("expected id=1, got %d", event.ID)
	}
}

func TestQueryGetEvents(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "topic", "item_id", "actor", "payload", "created_at"}).
		AddRow(1, "flock.item.created", "bl-a", "secretary", []byte(`{}`), now).
		AddRow(2, "flock.item.updated", "bl-a", nil, []byte(`{}`), now)
	mock.ExpectQuery("SELECT .+ FROM events WHERE item_id = \\$1").WithArgs("bl-a").WillReturnRows(rows)

	evts, err := queryGetEvents(context.Background(), db, "bl-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
	if evts[0].Actor != "secretary" || evts[1].Actor != "" {
		t.Fatalf("got actors=%q %q", evts[0].Actor, evts[1].Actor)
	}
}

func TestQuerySetConfig(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	config := &model.Config{Key: "view:youth-choir", Value: json.RawMessage(`{"collection":"song","category":"Youth Choir"}`)}
	mock.ExpectQuery("INSERT INTO configs").
		WithArgs("view:youth-choir", []byte(`{"collection":"song","category":"Youth Choir"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := querySetConfig(context.Background(), db, config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestQueryGetConfig(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM configs WHERE key = \\$1").WithArgs("dashboard:secretary").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "created_at", "updated_at"}).
			AddRow("dashboard:secretary", []byte(`{"capabilities":[]}`), now, now))

	config, err := queryGetConfig(context.Background(), db, "dashboard:secretary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Key != "dashboard:secretary" || string(config.Value) != `{"capabilities":[]}` {
		t.Fatalf("got key=%q value=%s", config.Key, config.Value)
	}
}

func TestQueryGetConfig_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM configs WHERE key = \\$1").WithArgs("nonexistent").
		WillReturnError(sql.ErrNoRows)

	if _, err := queryGetConfig(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestQueryListConfigs(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM configs WHERE key LIKE").WithArgs("view").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "created_at", "updated_at"}).
			AddRow("view:members-owusu", []byte(`{}`), now, now).
			AddRow("view:youth-choir", []byte(`{}`), now, now))

	configs, err := queryListConfigs(context.Background(), db, "view")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(configs))
	}
}

func TestQueryListAllConfigs(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT .+ FROM configs ORDER BY key").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "created_at", "updated_at"}).
			AddRow("dashboard:elder", []byte(`{}`), now, now).
			AddRow("view:youth-choir", []byte(`{}`), now, now))

	configs, err := queryListAllConfigs(context.Background(), db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(configs))
	}
	if configs[0].Key != "dashboard:elder" || configs[1].Key != "view:youth-choir" {
		t.Fatalf("unexpected keys: %q, %q", configs[0].Key, configs[1].Key)
	}
}

func TestQueryDeleteConfig(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM configs WHERE key = \\$1").WithArgs("view:youth-choir").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteConfig(context.Background(), db, "view:youth-choir"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteConfig_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM configs WHERE key = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteConfig(context.Background(), db, "nonexistent"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := newStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM items WHERE id = \\$1").WithArgs("bl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		// Nested calls reuse the same transaction.
		return tx.RunInTransaction(context.Background(), func(inner store.Store) error {
			return inner.DeleteItem(context.Background(), "bl-1")
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db, mock := newMockDB(t)
	s := newStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM items WHERE id = \\$1").WithArgs("bl-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteItem(context.Background(), "bl-missing")
	})
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestRunInTransaction_SharesQueriesWithPool(t *testing.T) {
	db, mock := newMockDB(t)
	s := newStore(db)

	countRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"collection", "count"}).AddRow("song", 3)
	}
	mock.ExpectQuery("SELECT collection, COUNT\\(\\*\\) FROM items GROUP BY collection").WillReturnRows(countRows())
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT collection, COUNT\\(\\*\\) FROM items GROUP BY collection").WillReturnRows(countRows())
	mock.ExpectCommit()

	pooled, err := s.CountByCollection(context.Background())
	if err != nil {
		t.Fatalf("pool count: %v", err)
	}
	var inTx map[model.Collection]int
	err = s.RunInTransaction(context.Background(), func(tx store.Store) error {
		var err error
		inTx, err = tx.CountByCollection(context.Background())
		return err
	})
	if err != nil {
		t.Fatalf("tx count: %v", err)
	}
	if pooled[model.CollectionSong] != 3 || inTx[model.CollectionSong] != 3 {
		t.Fatalf("counts differ: pool=%v tx=%v", pooled, inTx)
	}
}
