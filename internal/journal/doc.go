// Package journal keeps a SQLite audit log of scenario runs.
//
// Each run of a scenario gets a row in runs, and every facade call the
// harness makes during that run is appended to operations. The journal
// records calls and their answers; it never holds store state and a store
// cannot be rebuilt from it.
//
// # Ordering
//
//   - Runs are numbered by an autoincrement key, never by wall time
//   - Operations are keyed by (run_id, seq) where seq is the harness step number
//   - All reads ORDER BY run_id, seq
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Results are stored as canonical JSON (ir.MarshalCanonical), so the same
// answer always produces the same bytes.
package journal
