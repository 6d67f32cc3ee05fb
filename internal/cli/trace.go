package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	RunID   int64  // 0 selects the latest run
	Entity  string // optional: history of one entity across runs
	List    bool   // list runs instead of showing one
}

// TraceResult holds one journaled run and its calls.
type TraceResult struct {
	Run        journal.RunInfo     `json:"run"`
	Operations []journal.Operation `json:"operations"`
}

// EntityHistoryResult holds every journaled call on one entity.
type EntityHistoryResult struct {
	EntityID   string              `json:"entity_id"`
	Operations []journal.Operation `json:"operations"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace --journal <db>",
		Short: "Show journaled scenario runs",
		Long: `Show the calls recorded in a journal written by "run --journal".

Without flags the latest run is shown. Use --run to pick a run, --list to
list all runs, or --entity to follow one identifier across runs.

Examples:
  notestore trace --journal runs.db
  notestore trace --journal runs.db --run 3
  notestore trace --journal runs.db --list
  notestore trace --journal runs.db --entity 00000000-0000-4000-8000-000000000001`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	cmd.Flags().Int64Var(&opts.RunID, "run", 0, "run id (default: latest)")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "show the history of one entity id")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list all runs")
	_ = cmd.MarkFlagRequired("journal")
	cmd.MarkFlagsMutuallyExclusive("run", "entity", "list")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !fileExists(opts.Journal) {
		return commandError(formatter, ErrCodeJournal, fmt.Sprintf("journal not found: %s", opts.Journal), nil)
	}
	j, err := journal.Open(opts.Journal)
	if err != nil {
		return commandError(formatter, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	switch {
	case opts.List:
		return traceRuns(ctx, formatter, j)
	case opts.Entity != "":
		return traceEntity(ctx, formatter, j, opts.Entity)
	default:
		return traceRun(ctx, formatter, j, opts.RunID)
	}
}

func traceRuns(ctx context.Context, f *OutputFormatter, j *journal.Journal) error {
	runs, err := j.Runs(ctx)
	if err != nil {
		return commandError(f, ErrCodeJournal, "failed to read runs", err)
	}

	if f.Format == "json" {
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(f.Writer, "%4d  %-10s  %3d ops  %s\n", r.ID, runStatus(r), r.Operations, r.Scenario)
	}
	return nil
}

func traceRun(ctx context.Context, f *OutputFormatter, j *journal.Journal, runID int64) error {
	var (
		info journal.RunInfo
		err  error
	)
	if runID == 0 {
		info, err = j.LatestRun(ctx)
	} else {
		info, err = j.FindRun(ctx, runID)
	}
	if errors.Is(err, journal.ErrRunNotFound) {
		return commandError(f, ErrCodeJournal, "no such run", err)
	}
	if err != nil {
		return commandError(f, ErrCodeJournal, "failed to read run", err)
	}

	ops, err := j.Operations(ctx, info.ID)
	if err != nil {
		return commandError(f, ErrCodeJournal, "failed to read operations", err)
	}

	result := TraceResult{Run: info, Operations: ops}
	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Trace for Run: %d (%s)\n", info.ID, info.Scenario)
	if info.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", info.Source)
	}
	fmt.Fprintf(w, "Status: %s\n", runStatus(info))
	if info.Digest != "" {
		fmt.Fprintf(w, "Digest: %s\n", info.Digest)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timeline:")
	for _, op := range ops {
		formatOperation(w, op, f.Verbose)
	}
	return nil
}

func traceEntity(ctx context.Context, f *OutputFormatter, j *journal.Journal, raw string) error {
	id, err := ident.Parse(raw)
	if err != nil {
		return commandError(f, ErrCodeGeneric, "invalid entity id", err)
	}

	ops, err := j.EntityHistory(ctx, id)
	if err != nil {
		return commandError(f, ErrCodeJournal, "failed to read entity history", err)
	}

	if f.Format == "json" {
		return f.Success(EntityHistoryResult{EntityID: string(id), Operations: ops})
	}

	fmt.Fprintf(f.Writer, "History for Entity: %s\n\n", id)
	if len(ops) == 0 {
		fmt.Fprintln(f.Writer, "No operations recorded.")
		return nil
	}
	for _, op := range ops {
		fmt.Fprintf(f.Writer, "  run %d ", op.RunID)
		formatOperation(f.Writer, op, f.Verbose)
	}
	return nil
}

// formatOperation writes one journaled call as a timeline line.
func formatOperation(w io.Writer, op journal.Operation, verbose bool) {
	line := fmt.Sprintf("  [%d] %s", op.Seq, op.Op)
	if op.Label != "" {
		line += " " + op.Label
	}
	if op.EntityID != "" {
		line += " " + string(op.EntityID)
	}
	fmt.Fprintf(w, "%s -> %s\n", line, op.Outcome)
	if verbose && op.Result != "" {
		fmt.Fprintf(w, "       Result: %s\n", op.Result)
	}
}

func runStatus(r journal.RunInfo) string {
	switch {
	case !r.Finished:
		return "unfinished"
	case r.Pass:
		return "pass"
	default:
		return "fail"
	}
}
