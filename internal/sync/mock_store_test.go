package sync

import (
	"context"
	"errors"
	"sync"

	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

// mockStore implements the read paths ExportJSONL uses. Other Store
// methods panic through the nil embedded interface.
type mockStore struct {
	store.Store

	mu       sync.Mutex
	items    map[string]*model.Item
	configs  map[string]*model.Config
	comments map[string][]*model.Comment
	listErr  error
}

func newMockStore() *mockStore {
	return &mockStore{
		items:    make(map[string]*model.Item),
		configs:  make(map[string]*model.Config),
		comments: make(map[string][]*model.Comment),
	}
}

// ListItems returns items in map order; ExportJSONL must sort them itself.
func (m *mockStore) ListItems(_ context.Context, _ model.ItemFilter) ([]*model.Item, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var result []*model.Item
	for _, it := range m.items {
		clone := *it
		result = append(result, &clone)
	}
	return result, len(result), nil
}

func (m *mockStore) GetComments(_ context.Context, itemID string) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[itemID], nil
}

func (m *mockStore) ListAllConfigs(_ context.Context) ([]*model.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Config
	for _, c := range m.configs {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockStore) putItem(it *model.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
}

var errBoom = errors.New("boom")
