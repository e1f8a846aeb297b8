// Package idgen generates short, URL-safe item IDs backed by nanoid. Each
// collection stamps its own prefix so an ID alone tells you where it lives
// (e.g. "sg-4k2j9x0a" is a choir song).
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/alfredjeanlab/flock/internal/model"
)

// DefaultPrefix is used for collections without a registered prefix.
const DefaultPrefix = "fl-"

// Alphabet is lowercase-only; IDs are matched case-insensitively.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Length is the number of random characters after the prefix.
const Length = 8

// ForCollection returns a new ID carrying the collection's prefix.
func ForCollection(c model.Collection) (string, error) {
	prefix := DefaultPrefix
	if spec, ok := model.SpecFor(c); ok && spec.IDPrefix != "" {
		prefix = spec.IDPrefix
	}
	return WithPrefix(prefix)
}

// WithPrefix returns a new ID with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
