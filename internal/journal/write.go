package journal

import (
	"context"
	"fmt"

	"github.com/roach88/notestore/internal/harness"
	"github.com/roach88/notestore/internal/ir"
)

// Run is an open journal entry for one scenario execution.
// It implements harness.Recorder.
type Run struct {
	j  *Journal
	ID int64
}

var _ harness.Recorder = (*Run)(nil)

// BeginRun inserts a new, unfinished run and returns a recorder for it.
// source is the scenario file path, or empty.
func (j *Journal) BeginRun(ctx context.Context, scenario, source string) (*Run, error) {
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (scenario, source, store_version)
		VALUES (?, ?, ?)
	`, scenario, source, ir.StoreVersion)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	return &Run{j: j, ID: id}, nil
}

// Record appends one trace step to the run.
// Uses ON CONFLICT DO NOTHING for idempotency - recording the same seq twice
// keeps the first row.
func (r *Run) Record(ctx context.Context, step harness.TraceStep) error {
	var result any
	if step.Result != nil {
		data, err := ir.MarshalCanonical(step.Result)
		if err != nil {
			return fmt.Errorf("record step %d: %w", step.Seq, err)
		}
		result = string(data)
	}

	_, err := r.j.db.ExecContext(ctx, `
		INSERT INTO operations
		(run_id, seq, op, label, entity_id, outcome, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		r.ID,
		step.Seq,
		step.Op,
		step.Label,
		string(step.ID),
		step.Outcome,
		result,
	)
	if err != nil {
		return fmt.Errorf("record step %d: %w", step.Seq, err)
	}

	return nil
}

// Finish stores the run's verdict and final state digest.
func (r *Run) Finish(ctx context.Context, pass bool, digest string) error {
	res, err := r.j.db.ExecContext(ctx, `
		UPDATE runs SET pass = ?, digest = ? WHERE id = ?
	`, pass, digest, r.ID)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", r.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %d: %w", r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %d: %w", r.ID, ErrRunNotFound)
	}
	return nil
}
