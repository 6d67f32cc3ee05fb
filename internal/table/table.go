package table

import (
	"slices"

	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
)

// Entity is a stored value that carries its own identifier.
type Entity[E any] interface {
	EntityID() ir.ID
	WithID(id ir.ID) E
}

// Input builds a full entity once an identifier has been assigned.
type Input[E any] interface {
	Build(id ir.ID) E
}

// Updater merges a partial change onto an existing entity.
type Updater[E any] interface {
	Apply(existing E) E
}

// maxDraws bounds how many identifiers Insert draws before giving up on a
// generator that keeps returning taken ids.
const maxDraws = 64

// Table maps identifiers to entities of one kind.
type Table[E Entity[E], I Input[E], U Updater[E]] struct {
	kind    string
	gen     ident.Generator
	rows    map[ir.ID]E
	order   []ir.ID
	retired map[ir.ID]struct{}
}

// New creates an empty table. kind names the table in errors.
func New[E Entity[E], I Input[E], U Updater[E]](kind string, gen ident.Generator) *Table[E, I, U] {
	return &Table[E, I, U]{
		kind:    kind,
		gen:     gen,
		rows:    make(map[ir.ID]E),
		retired: make(map[ir.ID]struct{}),
	}
}

// Kind returns the table name.
func (t *Table[E, I, U]) Kind() string {
	return t.kind
}

// Insert assigns a fresh identifier, stores the built entity and returns it.
//
// An identifier that is live or was retired is never handed out again; the
// generator is asked for another. Panics if the generator returns only
// taken ids, which a random generator cannot do in practice.
func (t *Table[E, I, U]) Insert(in I) E {
	id := t.nextID()
	e := in.Build(id)
	t.rows[id] = e
	t.order = append(t.order, id)
	return e
}

func (t *Table[E, I, U]) nextID() ir.ID {
	for i := 0; i < maxDraws; i++ {
		id := t.gen.Generate()
		if t.taken(id) {
			continue
		}
		return id
	}
	panic("table " + t.kind + ": identifier generator keeps returning taken ids")
}

func (t *Table[E, I, U]) taken(id ir.ID) bool {
	if _, ok := t.rows[id]; ok {
		return true
	}
	_, ok := t.retired[id]
	return ok
}

// Get returns the entity stored under id.
func (t *Table[E, I, U]) Get(id ir.ID) (E, error) {
	e, ok := t.rows[id]
	if !ok {
		var zero E
		return zero, t.notFound(id)
	}
	return e, nil
}

// Update merges patch onto the stored entity, replaces it in place and
// returns the new value. The entity keeps its identifier and its position.
func (t *Table[E, I, U]) Update(id ir.ID, patch U) (E, error) {
	old, ok := t.rows[id]
	if !ok {
		var zero E
		return zero, t.notFound(id)
	}
	updated := patch.Apply(old).WithID(id)
	t.rows[id] = updated
	return updated, nil
}

// Remove deletes the entity stored under id and returns its last value.
// The identifier is retired and will not be assigned again.
func (t *Table[E, I, U]) Remove(id ir.ID) (E, error) {
	e, ok := t.rows[id]
	if !ok {
		var zero E
		return zero, t.notFound(id)
	}
	delete(t.rows, id)
	t.retired[id] = struct{}{}
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return e, nil
}

// List returns a snapshot of all entities in insertion order.
// The result is never nil.
func (t *Table[E, I, U]) List() []E {
	out := make([]E, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// Len returns the number of stored entities.
func (t *Table[E, I, U]) Len() int {
	return len(t.rows)
}

func (t *Table[E, I, U]) notFound(id ir.ID) error {
	return &NotFoundError{Kind: t.kind, ID: id}
}
