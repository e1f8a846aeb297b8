// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	conn
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newStore(db), nil
}

func newStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{conn: conn{ex: db}, db: db}
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunInTransaction calls fn with a store bound to a new transaction,
// committing when fn succeeds and rolling back otherwise.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&txStore{conn{ex: tx}}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore is the store handed to RunInTransaction callbacks.
type txStore struct {
	conn
}

var _ store.Store = (*txStore)(nil)

// RunInTransaction reuses the open transaction; there is no nesting.
func (s *txStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}

// conn runs every item, comment, event and config query against one
// executor, a pool or an open transaction.
type conn struct {
	ex executor
}

func (c conn) CreateItem(ctx context.Context, item *model.Item) error {
	return queryCreateItem(ctx, c.ex, item)
}

func (c conn) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return queryGetItem(ctx, c.ex, id)
}

func (c conn) ListItems(ctx context.Context, filter model.ItemFilter) ([]*model.Item, int, error) {
	return queryListItems(ctx, c.ex, filter)
}

func (c conn) UpdateItem(ctx context.Context, item *model.Item) error {
	return queryUpdateItem(ctx, c.ex, item)
}

func (c conn) DeleteItem(ctx context.Context, id string) error {
	return queryDeleteItem(ctx, c.ex, id)
}

func (c conn) CountByCollection(ctx context.Context) (map[model.Collection]int, error) {
	return queryCountByCollection(ctx, c.ex)
}

func (c conn) AddComment(ctx context.Context, comment *model.Comment) error {
	return queryAddComment(ctx, c.ex, comment)
}

func (c conn) GetComments(ctx context.Context, itemID string) ([]*model.Comment, error) {
	return queryGetComments(ctx, c.ex, itemID)
}

func (c conn) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, c.ex, event)
}

func (c conn) GetEvents(ctx context.Context, itemID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, c.ex, itemID)
}

func (c conn) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, c.ex, config)
}

func (c conn) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, c.ex, key)
}

func (c conn) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, c.ex, namespace)
}

func (c conn) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, c.ex)
}

func (c conn) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, c.ex, key)
}
