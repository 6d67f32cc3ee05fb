// Package ir provides the value types held by the note store.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Entities are flat value structs, so assignment is a full copy
//   - Updaters use pointer fields; nil means "leave unchanged"
//   - Payload fields are opaque: no validation, no cross-field rules
//   - All JSON tags use snake_case
package ir
