// Package server exposes church collections over HTTP/JSON and gRPC. Both
// transports share one Server and the transport-agnostic operations in
// items.go, dashboards.go and config.go.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredjeanlab/flock/internal/events"
	"github.com/alfredjeanlab/flock/internal/listview"
	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

// DefaultMaxPerPage caps the page size a client may ask for.
const DefaultMaxPerPage = 100

// Server holds the state shared by the HTTP and gRPC transports.
type Server struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub

	// DefaultPerPage applies when a listing request omits per_page;
	// larger requests are clamped to MaxPerPage.
	DefaultPerPage int
	MaxPerPage     int
}

// NewServer returns a new Server backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher) *Server {
	return &Server{
		store:          s,
		publisher:      p,
		sseHub:         newSSEHub(),
		DefaultPerPage: listview.DefaultPerPage,
		MaxPerPage:     DefaultMaxPerPage,
	}
}

// recordAndPublish persists an event to the store, publishes it to NATS and
// fans it out to SSE clients. All three are best-effort; failures are logged
// but do not fail the caller's mutation.
func (s *Server) recordAndPublish(ctx context.Context, topic, itemID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "item_id", itemID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		ItemID:  itemID,
		Actor:   actor,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "item_id", itemID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "item_id", itemID, "error", err)
	}
	s.sseHub.broadcast(topic, payload)
}
