// Package notestore is an in-memory store of musical timeline entities.
//
// The store keeps Notes and Events in two independent tables. It assigns
// every new entity a random UUIDv4, keeps entries in insertion order, and
// applies partial updates field by field:
//
//	s := notestore.New()
//	a := s.AddNote(notestore.NoteInput{Ticks: 0, Duration: 4})
//	a, err := s.UpdateNote(a.ID, notestore.NoteUpdater{Duration: notestore.Ptr(notestore.Ticks(8))})
//	if notestore.IsNotFound(err) {
//		// a was removed in the meantime
//	}
//
// The store is not safe for concurrent use.
package notestore

import (
	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
	"github.com/roach88/notestore/internal/store"
	"github.com/roach88/notestore/internal/table"
)

type (
	// Store is the note store facade.
	Store = store.Store
	// Option configures a Store.
	Option = store.Option
	// Generator produces identifiers for new entities.
	Generator = ident.Generator

	ID         = ir.ID
	Ticks      = ir.Ticks
	Velocity   = ir.Velocity
	NoteNumber = ir.NoteNumber

	Note        = ir.Note
	NoteInput   = ir.NoteInput
	NoteUpdater = ir.NoteUpdater

	Event        = ir.Event
	EventInput   = ir.EventInput
	EventUpdater = ir.EventUpdater

	// NotFoundError reports an identifier with no entry.
	NotFoundError = table.NotFoundError
)

// ErrNotFound matches every not-found error via errors.Is.
var ErrNotFound = table.ErrNotFound

// New creates an empty store.
func New(opts ...Option) *Store {
	return store.New(opts...)
}

// WithGenerator overrides the identifier generator.
func WithGenerator(gen Generator) Option {
	return store.WithGenerator(gen)
}

// IsNotFound returns true if err is or wraps a not-found error.
func IsNotFound(err error) bool {
	return table.IsNotFound(err)
}

// ParseID validates s as a UUID and returns it in canonical form.
func ParseID(s string) (ID, error) {
	return ident.Parse(s)
}

// Ptr returns a pointer to v, for building updaters.
func Ptr[T any](v T) *T {
	return ir.Ptr(v)
}
