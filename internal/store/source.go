package store

import (
	"context"
	"time"

	"github.com/alfredjeanlab/flock/internal/idgen"
	"github.com/alfredjeanlab/flock/internal/listview"
	"github.com/alfredjeanlab/flock/internal/model"
)

// DefaultFetchBatch is the page size CollectionSource reads the store with.
const DefaultFetchBatch = 500

// CollectionSource exposes one collection of a Store as a listview.Source.
// Fetch returns the whole collection in store order; the listview engine
// filters and pages it.
type CollectionSource struct {
	Store      Store
	Collection model.Collection
	Sort       string // optional; store default when empty
	Batch      int    // rows per store query; DefaultFetchBatch when zero
}

var _ listview.Source[*model.Item] = CollectionSource{}

// Fetch loads every item of the collection, Batch rows at a time.
func (s CollectionSource) Fetch(ctx context.Context) ([]*model.Item, error) {
	batch := s.Batch
	if batch <= 0 {
		batch = DefaultFetchBatch
	}
	var all []*model.Item
	for {
		items, total, err := s.Store.ListItems(ctx, model.ItemFilter{
			Collection: s.Collection,
			Sort:       s.Sort,
			Limit:      batch,
			Offset:     len(all),
		})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < batch || len(all) >= total {
			return all, nil
		}
	}
}

// Create stores a new item in the collection, assigning an ID and
// timestamps when they are unset. Date defaults to the creation time.
func (s CollectionSource) Create(ctx context.Context, item *model.Item) error {
	item.Collection = s.Collection
	if item.ID == "" {
		id, err := idgen.ForCollection(s.Collection)
		if err != nil {
			return err
		}
		item.ID = id
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	if item.Date.IsZero() {
		item.Date = item.CreatedAt
	}
	return s.Store.CreateItem(ctx, item)
}

// Update writes item back. Items of another collection report
// listview.ErrNotFound.
func (s CollectionSource) Update(ctx context.Context, item *model.Item) error {
	if item.Collection != "" && item.Collection != s.Collection {
		return listview.ErrNotFound
	}
	item.Collection = s.Collection
	return s.Store.UpdateItem(ctx, item)
}
