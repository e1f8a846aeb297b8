// Package sync backs up the flock directory as JSONL to one or more
// destinations on a schedule.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/flock/internal/model"
	"github.com/alfredjeanlab/flock/internal/store"
)

// FormatVersion is the version stamped into every export header.
const FormatVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string                   `json:"version"`
	Type        string                   `json:"type"`
	Timestamp   time.Time                `json:"timestamp"`
	ItemCount   int                      `json:"item_count"`
	ConfigCount int                      `json:"config_count"`
	Collections map[model.Collection]int `json:"collections"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every item, with its comments, and every config from
// the store as JSONL to w. Items are sorted by ID and configs by key so two
// exports of the same data differ only in the header timestamp.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	items, _, err := s.ListItems(ctx, model.ItemFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	counts := make(map[model.Collection]int)
	for _, it := range items {
		comments, err := s.GetComments(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("get comments for %s: %w", it.ID, err)
		}
		it.Comments = comments
		counts[it.Collection]++
	}
	slices.SortFunc(items, func(a, b *model.Item) int { return strings.Compare(a.ID, b.ID) })

	configs, err := s.ListAllConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list configs: %w", err)
	}
	slices.SortFunc(configs, func(a, b *model.Config) int { return strings.Compare(a.Key, b.Key) })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     FormatVersion,
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		ItemCount:   len(items),
		ConfigCount: len(configs),
		Collections: counts,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, it := range items {
		if err := enc.Encode(record{Type: "item", Data: it}); err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID, err)
		}
	}
	for _, c := range configs {
		if err := enc.Encode(record{Type: "config", Data: c}); err != nil {
			return fmt.Errorf("encode config %s: %w", c.Key, err)
		}
	}
	return nil
}
