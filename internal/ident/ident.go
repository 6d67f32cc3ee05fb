// Package ident assigns identifiers to new store entities.
package ident

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/notestore/internal/ir"
)

// Generator produces identifiers for new entities.
type Generator interface {
	Generate() ir.ID
}

// UUIDv4Generator generates random UUIDv4 identifiers.
//
// Uses github.com/google/uuid, which draws from crypto/rand, so identifiers
// are neither sequential nor predictable.
//
// Thread-safety: UUIDv4Generator is stateless and safe for concurrent use.
type UUIDv4Generator struct{}

// Generate returns a new UUIDv4 as a hyphenated lowercase string.
//
// Format: "550e8400-e29b-41d4-a716-446655440000" (36 characters)
func (UUIDv4Generator) Generate() ir.ID {
	return ir.ID(uuid.NewString())
}

// Parse validates s as a UUID and returns it in canonical lowercase
// hyphenated form. Accepts the forms uuid.Parse accepts (braces, urn prefix).
func Parse(s string) (ir.ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return ir.ID(u.String()), nil
}

// IsV4 reports whether id is a well-formed RFC 4122 version 4 UUID.
func IsV4(id ir.ID) bool {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

// FixedGenerator returns predetermined identifiers for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []ir.ID
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...ir.ID) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, so a test that creates more
// entities than it planned for fails loudly.
func (g *FixedGenerator) Generate() ir.ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
