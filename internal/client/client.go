// Package client provides a transport-agnostic interface for the flock
// service, with HTTP/JSON and gRPC implementations.
package client

import (
	"context"
	"encoding/json"

	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/listview"
	"github.com/alfredjeanlab/flock/internal/model"
)

// Client is the interface that all flock CLI commands use to talk to the
// server. It is implemented by HTTPClient (default) and GRPCClient.
type Client interface {
	// Items
	ListCollections(ctx context.Context) ([]model.CollectionSpec, error)
	ListItems(ctx context.Context, collection string, req *ListItemsRequest) (*ItemPage, error)
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, collection string, req *CreateItemRequest) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error

	// Comments and events
	AddComment(ctx context.Context, itemID, author, text string) (*model.Comment, error)
	GetComments(ctx context.Context, itemID string) ([]*model.Comment, error)
	GetEvents(ctx context.Context, itemID string) ([]*model.Event, error)

	// Dashboards
	GetDashboard(ctx context.Context, role string) (*dashboard.Dashboard, error)
	ListRoles(ctx context.Context) ([]RoleInfo, error)
	GetStats(ctx context.Context) (*Stats, error)

	// Config
	SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error)
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ItemPage is one page of a collection listing.
type ItemPage = listview.Page[*model.Item]

// ListItemsRequest holds the listing filters. Zero values mean "not set";
// the server applies its default page size.
type ListItemsRequest struct {
	Category string `json:"category,omitempty"`
	Date     string `json:"date,omitempty"` // YYYY-MM-DD
	Search   string `json:"q,omitempty"`
	Page     int    `json:"page,omitempty"`
	PerPage  int    `json:"per_page,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// CreateItemRequest holds parameters for creating an item.
type CreateItemRequest struct {
	Title     string          `json:"title"`
	Content   string          `json:"content,omitempty"`
	Author    string          `json:"author,omitempty"`
	Category  string          `json:"category,omitempty"`
	Date      string          `json:"date,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	Fields    json.RawMessage `json:"fields,omitempty"`
}

// UpdateItemRequest holds optional parameters for updating an item.
// Nil pointer fields mean "don't change". Fields is merged into the
// item's fields; null values remove keys.
type UpdateItemRequest struct {
	Title    *string         `json:"title,omitempty"`
	Content  *string         `json:"content,omitempty"`
	Author   *string         `json:"author,omitempty"`
	Category *string         `json:"category,omitempty"`
	Date     *string         `json:"date,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
}

// RoleInfo describes a role and the capabilities it currently resolves to.
type RoleInfo struct {
	Role         model.Role             `json:"role"`
	Capabilities []dashboard.Capability `json:"capabilities"`
	Overridden   bool                   `json:"overridden"`
}

// Stats holds per-collection item totals.
type Stats struct {
	Collections map[model.Collection]int `json:"collections"`
	TotalItems  int                      `json:"total_items"`
}
