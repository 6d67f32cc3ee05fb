package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/notestore/internal/ir"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes one journaled run.
type RunInfo struct {
	ID           int64  `json:"id"`
	Scenario     string `json:"scenario"`
	Source       string `json:"source,omitempty"`
	StoreVersion string `json:"store_version"`
	Finished     bool   `json:"finished"`
	Pass         bool   `json:"pass"`
	Digest       string `json:"digest,omitempty"`
	Operations   int    `json:"operations"`
}

// Operation is one journaled facade call.
type Operation struct {
	RunID    int64  `json:"run_id"`
	Seq      int64  `json:"seq"`
	Op       string `json:"op"`
	Label    string `json:"label,omitempty"`
	EntityID ir.ID  `json:"entity_id,omitempty"`
	Outcome  string `json:"outcome"`
	Result   string `json:"result,omitempty"` // canonical JSON
}

const runColumns = `
	r.id, r.scenario, r.source, r.store_version, r.pass, r.digest,
	(SELECT COUNT(*) FROM operations o WHERE o.run_id = r.id)
`

// Runs returns every run in insertion order.
// Returns an empty slice (not nil) if the journal is empty.
func (j *Journal) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// FindRun returns a single run by id.
func (j *Journal) FindRun(ctx context.Context, id int64) (RunInfo, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return info, err
}

// LatestRun returns the most recently started run.
func (j *Journal) LatestRun(ctx context.Context) (RunInfo, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r ORDER BY r.id DESC LIMIT 1`)
	info, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	return info, err
}

// Operations returns the calls of one run ordered by seq.
// Returns an empty slice (not nil) if the run has no operations.
func (j *Journal) Operations(ctx context.Context, runID int64) ([]Operation, error) {
	return j.queryOperations(ctx, `
		SELECT run_id, seq, op, label, entity_id, outcome, result
		FROM operations
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// EntityHistory returns every call that targeted or created id, across
// all runs, ordered by run then seq.
func (j *Journal) EntityHistory(ctx context.Context, id ir.ID) ([]Operation, error) {
	return j.queryOperations(ctx, `
		SELECT run_id, seq, op, label, entity_id, outcome, result
		FROM operations
		WHERE entity_id = ?
		ORDER BY run_id ASC, seq ASC
	`, string(id))
}

func (j *Journal) queryOperations(ctx context.Context, query string, args ...any) ([]Operation, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []Operation{}
	for rows.Next() {
		var (
			op       Operation
			entityID string
			result   sql.NullString
		)
		if err := rows.Scan(&op.RunID, &op.Seq, &op.Op, &op.Label, &entityID, &op.Outcome, &result); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.EntityID = ir.ID(entityID)
		op.Result = result.String
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}

	return ops, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunInfo, error) {
	var (
		info   RunInfo
		pass   sql.NullBool
		digest sql.NullString
	)
	err := s.Scan(&info.ID, &info.Scenario, &info.Source, &info.StoreVersion, &pass, &digest, &info.Operations)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, err
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("scan run: %w", err)
	}

	info.Finished = pass.Valid
	info.Pass = pass.Bool
	info.Digest = digest.String
	return info, nil
}
