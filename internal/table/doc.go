// Package table provides the per-kind entity table behind the store.
//
// A Table owns the mapping from identifier to entity value. Entries keep
// insertion order; List returns that order, never a time order.
//
// # Invariants
//
//   - Identifiers are unique within a table
//   - An identifier never changes and is never reused after removal
//   - Update is all-or-nothing: on NotFound nothing is mutated
//   - Returned values are copies; callers cannot reach stored state
//
// Tables are not safe for concurrent use. Hosts that share a store across
// goroutines must serialize access themselves.
package table
