package events

import (
	"context"

	"github.com/alfredjeanlab/flock/internal/model"
)

// Event topic constants
const (
	TopicItemCreated   = "flock.item.created"
	TopicItemUpdated   = "flock.item.updated"
	TopicItemDeleted   = "flock.item.deleted"
	TopicCommentAdded  = "flock.comment.added"
	TopicConfigSet     = "flock.config.set"
	TopicConfigDeleted = "flock.config.deleted"

	// TopicAll matches every flock topic.
	TopicAll = "flock.>"
)

// Event types

type ItemCreated struct {
	Item *model.Item `json:"item"`
}

type ItemUpdated struct {
	Item    *model.Item    `json:"item"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type ItemDeleted struct {
	ItemID     string           `json:"item_id"`
	Collection model.Collection `json:"collection"`
}

type CommentAdded struct {
	Comment *model.Comment `json:"comment"`
}

type ConfigSet struct {
	Config *model.Config `json:"config"`
}

type ConfigDeleted struct {
	Key string `json:"key"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
