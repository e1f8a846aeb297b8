package idgen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/alfredjeanlab/flock/internal/model"
)

func TestForCollection_Prefix(t *testing.T) {
	for _, c := range model.Collections {
		spec, _ := model.SpecFor(c)
		id, err := ForCollection(c)
		if err != nil {
			t.Fatalf("ForCollection(%s) error: %v", c, err)
		}
		if !strings.HasPrefix(id, spec.IDPrefix) {
			t.Errorf("ForCollection(%s) = %q, want prefix %q", c, id, spec.IDPrefix)
		}
		if len(id) != len(spec.IDPrefix)+Length {
			t.Errorf("ForCollection(%s) length = %d, want %d", c, len(id), len(spec.IDPrefix)+Length)
		}
	}
}

func TestForCollection_UnknownUsesDefault(t *testing.T) {
	id, err := ForCollection("bogus")
	if err != nil {
		t.Fatalf("ForCollection error: %v", err)
	}
	if !strings.HasPrefix(id, DefaultPrefix) {
		t.Errorf("got %q, want prefix %q", id, DefaultPrefix)
	}
}

func TestWithPrefix_Charset(t *testing.T) {
	pattern := regexp.MustCompile(`^mb-[a-z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		id, err := WithPrefix("mb-")
		if err != nil {
			t.Fatalf("WithPrefix error on iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("WithPrefix = %q, does not match %s", id, pattern)
		}
	}
}

func TestWithPrefix_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := WithPrefix("")
		if err != nil {
			t.Fatalf("WithPrefix error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
