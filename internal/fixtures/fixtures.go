// Package fixtures loads seed data for a flock directory from YAML.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alfredjeanlab/flock/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// Document is a seed file: items to create, comments to attach to them and
// configs to set.
type Document struct {
	Items   []Entry       `yaml:"items"`
	Configs []ConfigEntry `yaml:"configs"`
}

// Entry is one seeded item.
type Entry struct {
	Collection string         `yaml:"collection"`
	Title      string         `yaml:"title"`
	Content    string         `yaml:"content"`
	Author     string         `yaml:"author"`
	Category   string         `yaml:"category"`
	Date       string         `yaml:"date"`
	Fields     map[string]any `yaml:"fields"`
	Comments   []CommentEntry `yaml:"comments"`
}

// CommentEntry is a comment attached to a seeded item.
type CommentEntry struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// ConfigEntry is a seeded config, e.g. a saved view.
type ConfigEntry struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Default returns the embedded seed set.
func Default() (*Document, error) {
	return Parse(defaultYAML)
}

// LoadFile reads and validates a seed file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Load reads a seed document from r.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document. Every entry must build a
// valid item; the first failure is reported with its index.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse fixtures YAML: %w", err)
	}
	for i, e := range doc.Items {
		if _, err := e.Item(); err != nil {
			return nil, fmt.Errorf("item %d (%q): %w", i, e.Title, err)
		}
	}
	for i, c := range doc.Configs {
		if !strings.Contains(c.Key, ":") {
			return nil, fmt.Errorf("config %d: key %q must be namespace:name", i, c.Key)
		}
		if _, err := c.JSON(); err != nil {
			return nil, fmt.Errorf("config %d (%s): %w", i, c.Key, err)
		}
	}
	return &doc, nil
}

// Item builds the model item for an entry. ID and timestamps are left for
// the server to assign.
func (e Entry) Item() (*model.Item, error) {
	it := &model.Item{
		Collection: model.Collection(e.Collection),
		Title:      e.Title,
		Content:    e.Content,
		Author:     e.Author,
		Category:   e.Category,
	}
	if e.Date != "" {
		d, err := model.ParseDay(e.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", e.Date)
		}
		it.Date = d
	} else {
		it.Date = time.Now().UTC()
	}
	if len(e.Fields) > 0 {
		raw, err := json.Marshal(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields: %w", err)
		}
		it.Fields = raw
	}

	if err := model.ValidateItem(it); err != nil {
		return nil, err
	}
	spec, _ := model.SpecFor(it.Collection)
	if err := model.ValidateFields(it.Fields, spec.Fields); err != nil {
		return nil, err
	}
	return it, nil
}

// JSON encodes the config value.
func (c ConfigEntry) JSON() (json.RawMessage, error) {
	if c.Value == nil {
		return nil, fmt.Errorf("value is required")
	}
	raw, err := json.Marshal(c.Value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return raw, nil
}
