package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/basic_crud.yaml")
	require.NoError(t, err)

	assert.Equal(t, "basic_crud", s.Name)
	require.Len(t, s.Steps, 6)
	assert.Equal(t, OpAddNote, s.Steps[0].Op)
	assert.Equal(t, "a", s.Steps[0].As)
	require.NotNil(t, s.Steps[0].Note)
	assert.EqualValues(t, 60, s.Steps[0].Note.NoteNumber)
	assert.Equal(t, yaml.MappingNode, s.Steps[2].Patch.Kind)
	assert.Equal(t, ErrorNotFound, s.Steps[4].Expect.Error)
	require.NotNil(t, s.Steps[5].Expect.Count)
	assert.Equal(t, 1, *s.Steps[5].Expect.Count)
	assert.Len(t, s.Assertions, 4)
}

func TestLoadScenario_AllFixturesParse(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			assert.NoError(t, err)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	err := os.WriteFile(path, []byte(`
name: tmp
description: "one step"
steps:
  - op: list_notes
`), 0644)
	require.NoError(t, err)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "tmp", s.Name)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: "x"
steps: [{op: list_notes}]`,
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: x
steps: [{op: list_notes}]`,
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: `
name: x
description: "x"`,
			want: "steps list is required",
		},
		{
			name: "unknown top-level field",
			yaml: `
name: x
description: "x"
flow: []
steps: [{op: list_notes}]`,
			want: "failed to parse YAML",
		},
		{
			name: "unknown note field",
			yaml: `
name: x
description: "x"
steps:
  - op: add_note
    note: {pitch: 60}`,
			want: "failed to parse YAML",
		},
		{
			name: "unknown op",
			yaml: `
name: x
description: "x"
steps: [{op: add_track}]`,
			want: `unknown op "add_track"`,
		},
		{
			name: "missing target",
			yaml: `
name: x
description: "x"
steps: [{op: get_note}]`,
			want: "exactly one of ref or id is required",
		},
		{
			name: "both ref and id",
			yaml: `
name: x
description: "x"
steps:
  - op: add_note
    as: a
    note: {}
  - op: get_note
    ref: a
    id: abc`,
			want: "exactly one of ref or id is required",
		},
		{
			name: "unbound ref",
			yaml: `
name: x
description: "x"
steps: [{op: get_note, ref: a}]`,
			want: `ref "a" is not bound`,
		},
		{
			name: "duplicate label",
			yaml: `
name: x
description: "x"
steps:
  - {op: add_note, as: a, note: {}}
  - {op: add_note, as: a, note: {}}`,
			want: `label "a" is already bound`,
		},
		{
			name: "as on non-add op",
			yaml: `
name: x
description: "x"
steps: [{op: list_notes, as: a}]`,
			want: "as is only valid on add operations",
		},
		{
			name: "missing note payload",
			yaml: `
name: x
description: "x"
steps: [{op: add_note}]`,
			want: "note payload",
		},
		{
			name: "event payload on note op",
			yaml: `
name: x
description: "x"
steps: [{op: add_note, note: {}, event: {}}]`,
			want: "event payload",
		},
		{
			name: "patch on get",
			yaml: `
name: x
description: "x"
steps:
  - {op: add_note, as: a, note: {}}
  - {op: get_note, ref: a, patch: {ticks: 1}}`,
			want: "takes no patch",
		},
		{
			name: "unknown patch field",
			yaml: `
name: x
description: "x"
steps:
  - {op: add_note, as: a, note: {}}
  - {op: update_note, ref: a, patch: {kind: cc}}`,
			want: `patch: unknown field "kind"`,
		},
		{
			name: "patch not a mapping",
			yaml: `
name: x
description: "x"
steps:
  - {op: add_event, as: e, event: {}}
  - {op: update_event, ref: e, patch: [1]}`,
			want: "patch must be a mapping",
		},
		{
			name: "missing range",
			yaml: `
name: x
description: "x"
steps: [{op: notes_in_range}]`,
			want: "range is only valid on, and required by, range queries",
		},
		{
			name: "unknown expected error",
			yaml: `
name: x
description: "x"
steps: [{op: list_notes, expect: {error: boom}}]`,
			want: `unknown expected error "boom"`,
		},
		{
			name: "count on single-entity op",
			yaml: `
name: x
description: "x"
steps: [{op: add_note, note: {}, expect: {count: 1}}]`,
			want: "expect.count is only valid on list operations",
		},
		{
			name: "error with result",
			yaml: `
name: x
description: "x"
steps: [{op: get_note, id: x, expect: {error: not_found, result: {ticks: 1}}}]`,
			want: "expect.error excludes result and count",
		},
		{
			name: "unknown assertion type",
			yaml: `
name: x
description: "x"
steps: [{op: list_notes}]
assertions: [{type: trace_contains}]`,
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "assertion bad table",
			yaml: `
name: x
description: "x"
steps: [{op: list_notes}]
assertions: [{type: final_count, table: tracks}]`,
			want: "table must be",
		},
		{
			name: "assertion unbound ref",
			yaml: `
name: x
description: "x"
steps: [{op: list_notes}]
assertions: [{type: final_absent, table: notes, ref: a}]`,
			want: `ref "a" is not bound by any step`,
		},
		{
			name: "final_state without expect",
			yaml: `
name: x
description: "x"
steps: [{op: add_note, as: a, note: {}}]
assertions: [{type: final_state, table: notes, ref: a}]`,
			want: "expect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_EmptyPatchAllowed(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: x
description: "x"
steps:
  - {op: add_note, as: a, note: {}}
  - {op: update_note, ref: a}
  - {op: update_note, ref: a, patch: {}}
`))
	require.NoError(t, err)
	assert.Zero(t, s.Steps[1].Patch.Kind)
	assert.Equal(t, yaml.MappingNode, s.Steps[2].Patch.Kind)
}
