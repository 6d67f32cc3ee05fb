// Package store provides the in-memory note store facade.
//
// A Store composes two independent entity tables, one for Notes and one for
// Events, and routes each CRUD call to the matching table. There is no
// coupling between the tables: an operation on notes never reads or changes
// events, and vice versa.
//
// # Call Surface
//
//   - AddNote / AddEvent: assign a fresh UUIDv4 and store the entity
//   - GetNote / GetEvent: look up by identifier
//   - UpdateNote / UpdateEvent: merge a partial updater field by field
//   - RemoveNote / RemoveEvent: delete and return the last value
//   - ListNotes / ListEvents: snapshot in insertion order
//
// Get, Update and Remove fail with a not-found error (see table.IsNotFound)
// when the identifier has no entry. A failed call leaves the store unchanged.
//
// # Concurrency
//
// Every call runs to completion synchronously. The store has no internal
// locking; hosts that drive it from several goroutines must serialize
// access themselves.
package store
