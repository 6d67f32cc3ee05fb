package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/notestore/internal/ir"
)

// SequentialGenerator hands out UUID-shaped identifiers in a fixed sequence.
//
// The ids carry the version 4 and RFC 4122 variant nibbles, so they pass
// the same format checks as random ids, but a fresh generator always
// produces the same sequence. This makes scenario traces byte-identical
// across runs and suitable for golden comparison.
//
//	00000000-0000-4000-8000-000000000001
//	00000000-0000-4000-8000-000000000002
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu sync.Mutex
	n  uint64
}

// NewSequentialGenerator creates a generator whose first id ends in 1.
func NewSequentialGenerator() *SequentialGenerator {
	return &SequentialGenerator{}
}

// Generate returns the next identifier in the sequence.
func (g *SequentialGenerator) Generate() ir.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return SequentialID(g.n)
}

// Reset restarts the sequence. The next call to Generate ends in 1 again.
func (g *SequentialGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// SequentialID returns the n-th id a SequentialGenerator produces.
func SequentialID(n uint64) ir.ID {
	return ir.ID(fmt.Sprintf("00000000-0000-4000-8000-%012x", n))
}
