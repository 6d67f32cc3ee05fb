// Package harness runs YAML scenarios against a fresh note store.
//
// A scenario is a list of store operations with optional expectations,
// followed by assertions on the final state. The harness plays the part of
// a host application. It calls the store facade step by step and records a
// trace of every call. Answers that differ from the scenario's expectations
// are reported as errors on the Result.
//
// # Scenario Format
//
//	name: basic_crud
//	description: "Add two notes, update one, remove the other"
//	steps:
//	  - op: add_note
//	    as: a
//	    note: { ticks: 0, duration: 4 }
//	  - op: add_note
//	    as: b
//	    note: { ticks: 4, duration: 2 }
//	  - op: update_note
//	    ref: a
//	    patch: { duration: 8 }
//	    expect:
//	      result: { ticks: 0, duration: 8 }
//	  - op: remove_note
//	    ref: b
//	  - op: get_note
//	    ref: b
//	    expect:
//	      error: not_found
//	assertions:
//	  - type: final_order
//	    table: notes
//	    refs: [a]
//
// Labels bound with "as" stand in for the random identifiers the store
// assigns; later steps refer to them with "ref". A literal identifier can
// be passed with "id" instead.
//
// # Determinism
//
// By default the harness builds its store with a testutil.SequentialGenerator,
// so identifiers and therefore traces are identical on every run. Traces
// serialize to canonical JSON and can be compared against golden files with
// RunWithGolden.
package harness
