package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/notestore/internal/harness"
	"github.com/roach88/notestore/internal/ident"
	"github.com/roach88/notestore/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal   string // optional SQLite journal path
	Update    bool   // regenerate golden files
	RandomIDs bool   // use random UUIDv4 identifiers instead of sequential ones

	// Generator overrides the identifier generator (used by tests).
	Generator ident.Generator
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Digest string   `json:"digest,omitempty"`
	RunID  int64    `json:"run_id,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// RunResult holds the overall result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenarios against a fresh store",
		Long: `Run scenario files, each against its own fresh store.

Arguments are files, directories, or glob patterns ("scenarios/**/*.yaml").
If a golden file exists at golden/<name>.golden next to a scenario, the
canonical trace must match it byte for byte. With --journal every call is
also appended to a SQLite journal.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (no files, journal error, etc.)

Examples:
  notestore run ./scenarios
  notestore run "scenarios/**/*.yaml" --journal runs.db
  notestore run ./scenarios --update
  notestore run ./scenarios --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "append runs to this SQLite journal")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().BoolVar(&opts.RandomIDs, "random-ids", false, "use random UUIDv4 identifiers (disables golden comparison)")

	return cmd
}

// newLogger builds the command logger: text on stderr, Debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runScenarios(opts *RunOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	files, err := expandScenarioArgs(args)
	if err != nil {
		return commandError(formatter, ErrCodeNoFiles, "failed to find scenarios", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var j *journal.Journal
	if opts.Journal != "" {
		logger.Debug("opening journal", "path", opts.Journal)
		j, err = journal.Open(opts.Journal)
		if err != nil {
			return commandError(formatter, ErrCodeJournal, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
	}

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}

	for _, file := range files {
		sr, err := runScenarioFile(ctx, opts, file, j, logger)
		if err != nil {
			return commandError(formatter, ErrCodeJournal, "journal write failed", err)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if opts.Format != "json" {
			writeScenarioText(cmd.OutOrStdout(), sr)
		}
	}

	return outputRunResult(formatter, result)
}

// runScenarioFile loads and runs one scenario. Scenario problems are
// reported in the result; a returned error means the journal failed.
func runScenarioFile(ctx context.Context, opts *RunOptions, file string, j *journal.Journal, logger *slog.Logger) (ScenarioResult, error) {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return sr, nil
	}
	sr.Name = scenario.Name

	hopts := []harness.Option{harness.WithLogger(logger)}
	switch {
	case opts.Generator != nil:
		hopts = append(hopts, harness.WithGenerator(opts.Generator))
	case opts.RandomIDs:
		hopts = append(hopts, harness.WithGenerator(ident.UUIDv4Generator{}))
	}

	var run *journal.Run
	if j != nil {
		run, err = j.BeginRun(ctx, scenario.Name, file)
		if err != nil {
			return sr, err
		}
		sr.RunID = run.ID
		hopts = append(hopts, harness.WithRecorder(run))
	}

	logger.Info("running scenario", "scenario", scenario.Name, "file", file)
	result, err := harness.Run(ctx, scenario, hopts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr, nil
	}

	sr.Pass = result.Pass
	sr.Digest = result.Digest
	sr.Errors = result.Errors

	if !opts.RandomIDs {
		if err := checkGolden(file, scenario.Name, result, opts.Update); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, err.Error())
		}
	}

	if run != nil {
		if err := run.Finish(ctx, sr.Pass, result.Digest); err != nil {
			return sr, err
		}
	}

	return sr, nil
}

var errGoldenMismatch = errors.New("trace differs from golden file")

// checkGolden compares the canonical trace with the scenario's golden file,
// or rewrites it when update is set. A missing golden file is not an error.
func checkGolden(file, name string, result *harness.Result, update bool) error {
	snapshot := harness.NewSnapshot(name, result)
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	path := goldenFilePath(file)
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("%w %s", errGoldenMismatch, path)
	}
	return nil
}

func writeScenarioText(w io.Writer, sr ScenarioResult) {
	if sr.Pass {
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

func outputRunResult(f *OutputFormatter, result RunResult) error {
	if f.Format == "json" {
		if result.Failed > 0 {
			msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
			if err := f.Failure(ErrCodeScenarioFailed, msg, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return f.Success(result)
	}

	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	return nil
}
