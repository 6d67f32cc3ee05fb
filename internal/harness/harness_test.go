package harness

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
	"github.com/roach88/notestore/internal/testutil"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_BasicCRUD(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/basic_crud.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 6)
	assert.Equal(t, testutil.SequentialID(1), result.Labels["a"])
	assert.Equal(t, testutil.SequentialID(2), result.Labels["b"])
	assert.Equal(t, OutcomeNotFound, result.Trace[4].Outcome)
	assert.Len(t, result.Digest, 64)

	for i, step := range result.Trace {
		assert.Equal(t, int64(i+1), step.Seq)
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/range_queries.yaml")
	require.NoError(t, err)

	r1, err := Run(context.Background(), s)
	require.NoError(t, err)
	r2, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, r1.Trace, r2.Trace)
	assert.Equal(t, r1.Digest, r2.Digest)
}

func TestRun_ResultMismatchFails(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: "wrong expected duration"
steps:
  - op: add_note
    as: a
    note: { duration: 4 }
  - op: update_note
    ref: a
    patch: { duration: 8 }
    expect:
      result: { duration: 9 }
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 1 (update_note): result mismatch")
	assert.Contains(t, result.Errors[0], "duration=9")
}

func TestRun_UnexpectedNotFoundFails(t *testing.T) {
	s := mustParse(t, `
name: missing
description: "literal id that was never assigned"
steps:
  - op: get_event
    id: 00000000-0000-4000-8000-000000000099
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected not_found")
	assert.Equal(t, ir.ID("00000000-0000-4000-8000-000000000099"), result.Trace[0].ID)
	assert.Nil(t, result.Trace[0].Result)
}

func TestRun_ExpectedNotFoundButPresentFails(t *testing.T) {
	s := mustParse(t, `
name: present
description: "entity still there"
steps:
  - op: add_note
    as: a
    note: {}
  - op: get_note
    ref: a
    expect:
      error: not_found
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error not_found, got ok")
}

func TestRun_CountMismatchFails(t *testing.T) {
	s := mustParse(t, `
name: count
description: "list length"
steps:
  - op: add_event
    event: { kind: cc }
  - op: list_events
    expect:
      count: 2
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected 2 entities, got 1")
}

func TestRun_EmptyPatchReturnsEqualEntity(t *testing.T) {
	s := mustParse(t, `
name: empty_patch
description: "update without patch"
steps:
  - op: add_note
    as: a
    note: { ticks: 3, duration: 5, velocity: 7, note_number: 9 }
  - op: update_note
    ref: a
  - op: update_note
    ref: a
    patch: {}
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, result.Trace[0].Result, result.Trace[1].Result)
	assert.Equal(t, result.Trace[0].Result, result.Trace[2].Result)
}

func TestRun_TablesAreIsolated(t *testing.T) {
	s := mustParse(t, `
name: isolation
description: "a note id is not an event id"
steps:
  - op: add_note
    as: a
    note: {}
  - op: get_event
    ref: a
    expect:
      error: not_found
  - op: remove_event
    ref: a
    expect:
      error: not_found
  - op: get_note
    ref: a
assertions:
  - type: final_count
    table: notes
    count: 1
  - type: final_count
    table: events
    count: 0
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_PatchDecodeErrorAborts(t *testing.T) {
	s := mustParse(t, `
name: overflow
description: "velocity does not fit in a byte"
steps:
  - op: add_note
    as: a
    note: {}
  - op: update_note
    ref: a
    patch: { velocity: 300 }
`)

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (update_note)")
	assert.Contains(t, err.Error(), "failed to decode patch")
}

func TestRun_BindingWithoutEntityAborts(t *testing.T) {
	s := &Scenario{
		Name:        "unchecked",
		Description: "built in code, bypassing validation",
		Steps: []Step{
			{Op: OpGetNote, ID: "missing", As: "y"},
		},
	}

	var result *Result
	var err error
	require.NotPanics(t, func() {
		result, err = Run(context.Background(), s)
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "step 0 (get_note)")
	assert.Contains(t, err.Error(), `as "y"`)
}

func TestRun_LiteralIDIsCanonicalized(t *testing.T) {
	const id = "3f0e5c1a-9a43-4f5e-8d7e-0b6a3c1d2e4f"
	s := mustParse(t, `
name: upper_id
description: "literal ids match regardless of case"
steps:
  - { op: add_note, as: a, note: {} }
  - { op: get_note, id: "3F0E5C1A-9A43-4F5E-8D7E-0B6A3C1D2E4F" }
`)

	result, err := Run(context.Background(), s, WithGenerator(ident.NewFixedGenerator(id)))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, OutcomeOK, result.Trace[1].Outcome)
	assert.Equal(t, ir.ID(id), result.Trace[1].ID)
}

func TestRun_TrackRangeQuery(t *testing.T) {
	s := mustParse(t, `
name: track_range
description: "range queries narrowed to one track"
steps:
  - { op: add_note, as: bass, note: { ticks: 0, duration: 960, track_id: t-bass } }
  - { op: add_note, as: lead, note: { ticks: 480, duration: 240, track_id: t-lead } }
  - { op: add_event, as: cc, event: { ticks: 480, kind: cc, track_id: t-lead } }
  - op: notes_in_range
    range: { start: 480, end: 960, within_duration: true, track: t-bass }
    expect: { count: 1 }
  - op: notes_in_range
    range: { start: 480, end: 960, within_duration: true }
    expect: { count: 2 }
  - op: events_in_range
    range: { start: 0, end: 960, track: t-bass }
    expect: { count: 0 }
`)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	list, ok := result.Trace[3].Result.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, string(result.Labels["bass"]), list[0].(map[string]any)["id"])
}

func TestRun_WithUUIDGenerator(t *testing.T) {
	s := mustParse(t, `
name: random_ids
description: "real identifiers"
steps:
  - { op: add_note, as: a, note: {} }
  - { op: add_note, as: b, note: {} }
  - { op: get_note, ref: b }
`)

	result, err := Run(context.Background(), s, WithGenerator(ident.UUIDv4Generator{}))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.True(t, ident.IsV4(result.Labels["a"]))
	assert.True(t, ident.IsV4(result.Labels["b"]))
	assert.NotEqual(t, result.Labels["a"], result.Labels["b"])
}

func TestRun_ContextCanceled(t *testing.T) {
	s := mustParse(t, `
name: canceled
description: "never starts"
steps:
  - op: list_notes
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Logger(t *testing.T) {
	s := mustParse(t, `
name: logged
description: "log output"
steps:
  - op: list_notes
`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), s, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "step completed")
	assert.Contains(t, out, "op=list_notes")
	assert.Contains(t, out, "scenario completed")
	assert.Contains(t, out, "scenario=logged")
}

type captureRecorder struct {
	steps []TraceStep
	err   error
}

func (r *captureRecorder) Record(_ context.Context, step TraceStep) error {
	if r.err != nil {
		return r.err
	}
	r.steps = append(r.steps, step)
	return nil
}

func TestRun_Recorder(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/basic_crud.yaml")
	require.NoError(t, err)

	rec := &captureRecorder{}
	result, err := Run(context.Background(), s, WithRecorder(rec))
	require.NoError(t, err)

	assert.Equal(t, result.Trace, rec.steps)
}

func TestRun_RecorderErrorAborts(t *testing.T) {
	s := mustParse(t, `
name: rec
description: "recorder fails"
steps:
  - op: list_notes
`)

	boom := errors.New("disk full")
	_, err := Run(context.Background(), s, WithRecorder(&captureRecorder{err: boom}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to record step")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("bad")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"bad"}, r.Errors)
}

func TestResult_Count(t *testing.T) {
	r := NewResult()
	r.AddTrace(TraceStep{Op: OpAddNote})
	r.AddTrace(TraceStep{Op: OpListNotes})
	r.AddTrace(TraceStep{Op: OpAddNote})

	assert.Equal(t, 2, r.Count(OpAddNote))
	assert.Equal(t, 0, r.Count(OpAddEvent))
}
