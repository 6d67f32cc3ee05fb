package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: basic
description: "add, update, remove"
steps:
  - op: add_note
    as: a
    note: { ticks: 0, duration: 4, velocity: 100, note_number: 60 }
  - op: add_note
    as: b
    note: { ticks: 4, duration: 2 }
  - op: update_note
    ref: a
    patch: { duration: 8 }
    expect:
      result: { duration: 8 }
  - op: remove_note
    ref: b
  - op: get_note
    ref: b
    expect:
      error: not_found
assertions:
  - type: final_order
    table: notes
    refs: [a]
`

const failingScenario = `name: failing
description: "expects the wrong duration"
steps:
  - op: add_note
    as: a
    note: { duration: 4 }
    expect:
      result: { duration: 5 }
`

// writeScenario writes a scenario file into dir and returns its path.
func writeScenario(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errBuf.String(), err
}
