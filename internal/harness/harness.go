package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/ir"
	"github.com/roach88/notestore/internal/store"
	"github.com/roach88/notestore/internal/table"
	"github.com/roach88/notestore/internal/testutil"
)

// Recorder receives every trace step as it is produced.
// The journal package implements it to persist runs.
type Recorder interface {
	Record(ctx context.Context, step TraceStep) error
}

// Harness executes one scenario against one store.
type Harness struct {
	store    *store.Store
	logger   *slog.Logger
	recorder Recorder
	clock    *testutil.StepClock
	labels   map[string]ir.ID
}

// Option configures a scenario run.
type Option func(*options)

type options struct {
	gen      ident.Generator
	logger   *slog.Logger
	recorder Recorder
}

// WithGenerator overrides the identifier generator.
// Defaults to a fresh testutil.SequentialGenerator.
func WithGenerator(gen ident.Generator) Option {
	return func(o *options) {
		o.gen = gen
	}
}

// WithLogger sets the logger for step progress. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder forwards every trace step to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh store
// 2. Execute steps in order, checking each expect clause
// 3. Evaluate assertions against the trace and the final store
// 4. Return result with pass/fail, trace, errors and state digest
//
// Expectation mismatches are reported in the result. A returned error means
// the scenario could not be executed at all.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		gen:    testutil.NewSequentialGenerator(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Harness{
		store:    store.New(store.WithGenerator(o.gen)),
		logger:   o.logger.With("scenario", scenario.Name),
		recorder: o.recorder,
		clock:    testutil.NewStepClock(),
		labels:   make(map[string]ir.ID),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.store) {
		result.AddError(msg)
	}

	digest, err := h.store.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to compute state digest: %w", err)
	}
	result.Digest = digest

	h.logger.Info("scenario completed",
		"pass", result.Pass,
		"steps", len(result.Trace),
		"errors", len(result.Errors),
	)

	return result, nil
}

// executeStep performs one facade call, records it, and checks its expect clause.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	trace := TraceStep{
		Seq:     h.clock.Next(),
		Op:      step.Op,
		Label:   step.As,
		Outcome: OutcomeOK,
	}

	if step.Ref != "" || step.ID != "" {
		id, err := h.resolve(step)
		if err != nil {
			return err
		}
		trace.ID = id
		trace.Label = step.Ref
	}

	value, err := h.call(step, trace.ID)
	switch {
	case table.IsNotFound(err):
		trace.Outcome = OutcomeNotFound
	case err != nil:
		return err
	default:
		trace.Result = value
	}

	if step.As != "" {
		entity, _ := value.(map[string]any)
		raw, ok := entity["id"].(string)
		if !ok {
			return fmt.Errorf("as %q: %s returned no entity to bind", step.As, step.Op)
		}
		id := ir.ID(raw)
		h.labels[step.As] = id
		result.Labels[step.As] = id
		trace.ID = id
	}

	result.AddTrace(trace)
	if h.recorder != nil {
		if err := h.recorder.Record(ctx, trace); err != nil {
			return fmt.Errorf("failed to record step: %w", err)
		}
	}

	for _, msg := range checkExpect(i, step, trace) {
		result.AddError(msg)
	}

	h.logger.Debug("step completed",
		"step", i,
		"op", step.Op,
		"id", trace.ID,
		"outcome", trace.Outcome,
	)
	return nil
}

func (h *Harness) resolve(step Step) (ir.ID, error) {
	if step.ID != "" {
		// Literal UUIDs are canonicalized so journal lookups by id match.
		if id, err := ident.Parse(step.ID); err == nil {
			return id, nil
		}
		return ir.ID(step.ID), nil
	}
	id, ok := h.labels[step.Ref]
	if !ok {
		return "", fmt.Errorf("unbound ref %q", step.Ref)
	}
	return id, nil
}

// call dispatches a step to the store. Entities come back as maps and
// lists as []any so the trace can be serialized canonically.
func (h *Harness) call(step Step, id ir.ID) (any, error) {
	s := h.store
	switch step.Op {
	case OpAddNote:
		return s.AddNote(*step.Note).ToMap(), nil
	case OpGetNote:
		return noteResult(s.GetNote(id))
	case OpUpdateNote:
		var patch ir.NoteUpdater
		if err := decodePatch(step, &patch); err != nil {
			return nil, err
		}
		return noteResult(s.UpdateNote(id, patch))
	case OpRemoveNote:
		return noteResult(s.RemoveNote(id))
	case OpListNotes:
		return entityList(s.ListNotes()), nil
	case OpNotesInRange:
		r := step.Range
		if r.Track != "" {
			return entityList(s.TrackNotesInRange(r.Track, r.Start, r.End, r.WithinDuration)), nil
		}
		return entityList(s.NotesInRange(r.Start, r.End, r.WithinDuration)), nil

	case OpAddEvent:
		return s.AddEvent(*step.Event).ToMap(), nil
	case OpGetEvent:
		return eventResult(s.GetEvent(id))
	case OpUpdateEvent:
		var patch ir.EventUpdater
		if err := decodePatch(step, &patch); err != nil {
			return nil, err
		}
		return eventResult(s.UpdateEvent(id, patch))
	case OpRemoveEvent:
		return eventResult(s.RemoveEvent(id))
	case OpListEvents:
		return entityList(s.ListEvents()), nil
	case OpEventsInRange:
		r := step.Range
		if r.Track != "" {
			return entityList(s.TrackEventsInRange(r.Track, r.Start, r.End)), nil
		}
		return entityList(s.EventsInRange(r.Start, r.End)), nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

// decodePatch decodes the raw patch node. An absent patch is the empty updater.
func decodePatch(step Step, out any) error {
	if step.Patch.Kind == 0 {
		return nil
	}
	if err := step.Patch.Decode(out); err != nil {
		return fmt.Errorf("failed to decode patch: %w", err)
	}
	return nil
}

func noteResult(n ir.Note, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return n.ToMap(), nil
}

func eventResult(e ir.Event, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return e.ToMap(), nil
}

func entityList[E interface{ ToMap() map[string]any }](items []E) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.ToMap()
	}
	return out
}
