package store

import (
	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
	"github.com/roach88/notestore/internal/table"
)

// Table kinds, used in not-found errors.
const (
	KindNote  = "note"
	KindEvent = "event"
)

type (
	noteTable  = table.Table[ir.Note, ir.NoteInput, ir.NoteUpdater]
	eventTable = table.Table[ir.Event, ir.EventInput, ir.EventUpdater]
)

// Store holds one Note table and one Event table.
type Store struct {
	notes  *noteTable
	events *eventTable
}

// Option configures a Store.
type Option func(*config)

type config struct {
	gen ident.Generator
}

// WithGenerator overrides the identifier generator used by both tables.
// Defaults to ident.UUIDv4Generator.
func WithGenerator(gen ident.Generator) Option {
	return func(c *config) {
		c.gen = gen
	}
}

// New creates a store with two empty tables.
func New(opts ...Option) *Store {
	cfg := config{gen: ident.UUIDv4Generator{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		notes:  table.New[ir.Note, ir.NoteInput, ir.NoteUpdater](KindNote, cfg.gen),
		events: table.New[ir.Event, ir.EventInput, ir.EventUpdater](KindEvent, cfg.gen),
	}
}

// AddNote stores a new note and returns it with its assigned identifier.
func (s *Store) AddNote(in ir.NoteInput) ir.Note {
	return s.notes.Insert(in)
}

// AddNotes stores each input in order, as repeated AddNote calls.
func (s *Store) AddNotes(ins ...ir.NoteInput) []ir.Note {
	out := make([]ir.Note, 0, len(ins))
	for _, in := range ins {
		out = append(out, s.notes.Insert(in))
	}
	return out
}

// GetNote returns the note stored under id.
func (s *Store) GetNote(id ir.ID) (ir.Note, error) {
	return s.notes.Get(id)
}

// UpdateNote merges u onto the note stored under id and returns the result.
func (s *Store) UpdateNote(id ir.ID, u ir.NoteUpdater) (ir.Note, error) {
	return s.notes.Update(id, u)
}

// RemoveNote deletes the note stored under id and returns its last value.
func (s *Store) RemoveNote(id ir.ID) (ir.Note, error) {
	return s.notes.Remove(id)
}

// ListNotes returns all notes in insertion order.
func (s *Store) ListNotes() []ir.Note {
	return s.notes.List()
}

// NoteCount returns the number of stored notes.
func (s *Store) NoteCount() int {
	return s.notes.Len()
}

// AddEvent stores a new event and returns it with its assigned identifier.
func (s *Store) AddEvent(in ir.EventInput) ir.Event {
	return s.events.Insert(in)
}

// AddEvents stores each input in order, as repeated AddEvent calls.
func (s *Store) AddEvents(ins ...ir.EventInput) []ir.Event {
	out := make([]ir.Event, 0, len(ins))
	for _, in := range ins {
		out = append(out, s.events.Insert(in))
	}
	return out
}

// GetEvent returns the event stored under id.
func (s *Store) GetEvent(id ir.ID) (ir.Event, error) {
	return s.events.Get(id)
}

// UpdateEvent merges u onto the event stored under id and returns the result.
func (s *Store) UpdateEvent(id ir.ID, u ir.EventUpdater) (ir.Event, error) {
	return s.events.Update(id, u)
}

// RemoveEvent deletes the event stored under id and returns its last value.
func (s *Store) RemoveEvent(id ir.ID) (ir.Event, error) {
	return s.events.Remove(id)
}

// ListEvents returns all events in insertion order.
func (s *Store) ListEvents() []ir.Event {
	return s.events.List()
}

// EventCount returns the number of stored events.
func (s *Store) EventCount() int {
	return s.events.Len()
}

// Digest fingerprints the current contents of both tables.
func (s *Store) Digest() (string, error) {
	return ir.StateDigest(s.ListNotes(), s.ListEvents())
}
