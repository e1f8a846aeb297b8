package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/flock/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}
	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != FormatVersion || h.Type != "header" || h.ItemCount != 0 || h.ConfigCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithItemsAndConfigs(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()

	ms.items["sg-zzz"] = &model.Item{ID: "sg-zzz", Collection: model.CollectionSong, Title: "Second", Date: now, CreatedAt: now, UpdatedAt: now}
	ms.items["bl-aaa"] = &model.Item{ID: "bl-aaa", Collection: model.CollectionBlog, Title: "First", Date: now, CreatedAt: now, UpdatedAt: now}
	ms.items["mb-mmm"] = &model.Item{ID: "mb-mmm", Collection: model.CollectionMember, Title: "Ama", Date: now, CreatedAt: now, UpdatedAt: now,
		Fields: json.RawMessage(`{"email":"ama@church.org"}`)}
	ms.comments["bl-aaa"] = []*model.Comment{{ID: 1, ItemID: "bl-aaa", Author: "Kofi", Text: "Amen", CreatedAt: now}}
	ms.configs["view:members"] = &model.Config{Key: "view:members", Value: json.RawMessage(`{"collection":"member"}`)}
	ms.configs["dashboard:deacon"] = &model.Config{Key: "dashboard:deacon", Value: json.RawMessage(`{"capabilities":[]}`)}

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.ItemCount != 3 || h.ConfigCount != 2 || h.Collections[model.CollectionSong] != 1 {
		t.Fatalf("unexpected header: %+v", h)
	}

	var ids []string
	for _, line := range lines[1:4] {
		var rec struct {
			Type string     `json:"type"`
			Data model.Item `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal item: %v", err)
		}
		if rec.Type != "item" {
			t.Fatalf("expected item record, got %q", rec.Type)
		}
		ids = append(ids, rec.Data.ID)
		if rec.Data.ID == "bl-aaa" && len(rec.Data.Comments) != 1 {
			t.Fatalf("bl-aaa should embed its comment: %+v", rec.Data)
		}
	}
	if strings.Join(ids, ",") != "bl-aaa,mb-mmm,sg-zzz" {
		t.Fatalf("items not sorted by ID: %v", ids)
	}

	var cfg struct {
		Type string       `json:"type"`
		Data model.Config `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[4]), &cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if cfg.Type != "config" || cfg.Data.Key != "dashboard:deacon" {
		t.Fatalf("configs not sorted by key: %+v", cfg)
	}
}

func TestExportJSONL_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.listErr = errBoom
	if err := ExportJSONL(context.Background(), ms, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
