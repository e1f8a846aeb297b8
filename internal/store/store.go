package store

import (
	"context"

	"github.com/alfredjeanlab/flock/internal/model"
)

// Store defines the persistence interface for church items.
type Store interface {
	// Item CRUD
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, filter model.ItemFilter) ([]*model.Item, int, error) // returns items, total count, error
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, id string) error
	CountByCollection(ctx context.Context) (map[model.Collection]int, error)

	// Comments
	AddComment(ctx context.Context, comment *model.Comment) error
	GetComments(ctx context.Context, itemID string) ([]*model.Comment, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, itemID string) ([]*model.Event, error)

	// Configs
	SetConfig(ctx context.Context, config *model.Config) error
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	ListAllConfigs(ctx context.Context) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
