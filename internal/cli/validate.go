package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/notestore/internal/harness"
	"github.com/roach88/notestore/internal/schema"
)

// FileValidation holds the validation outcome of one scenario file.
type FileValidation struct {
	File   string   `json:"file"`
	Name   string   `json:"name,omitempty"`
	Valid  bool     `json:"valid"`
	Code   string   `json:"code,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenarios without running them",
		Long: `Validate scenario files without running them.

Each file is checked twice: by the scenario loader (structure, labels,
per-op arguments) and against the embedded CUE schema (value ranges).
All problems in a file are reported, not just the first.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := expandScenarioArgs(args)
	if err != nil {
		return commandError(formatter, ErrCodeNoFiles, "failed to find scenarios", err)
	}

	validator, err := schema.New()
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, "failed to load schema", err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := validateFile(validator, file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	return outputValidation(formatter, result)
}

func validateFile(validator *schema.Validator, file string) FileValidation {
	fv := FileValidation{File: file, Valid: true}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		fv.Valid = false
		fv.Code = ErrCodeLoadFailed
		fv.Issues = append(fv.Issues, err.Error())
	} else {
		fv.Name = scenario.Name
	}

	if err := validator.ValidateFile(file); err != nil {
		fv.Valid = false
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			if fv.Code == "" {
				fv.Code = ErrCodeSchema
			}
			for _, issue := range verr.Issues {
				fv.Issues = append(fv.Issues, issue.Message)
			}
		} else if fv.Code == "" {
			// Unreadable or not YAML: the loader already reported it.
			fv.Code = ErrCodeLoadFailed
			fv.Issues = append(fv.Issues, err.Error())
		}
	}

	return fv
}

func outputValidation(f *OutputFormatter, result ValidationResult) error {
	invalid := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			invalid++
		}
	}

	if f.Format == "json" {
		if invalid == 0 {
			return f.Success(result)
		}
		first := firstInvalid(result)
		msg := fmt.Sprintf("%d of %d scenario file(s) invalid", invalid, len(result.Files))
		if err := f.Failure(first.Code, msg, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", invalid))
	}

	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(f.Writer, "✓ %s\n", fv.File)
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s\n", fv.File)
		for _, issue := range fv.Issues {
			fmt.Fprintf(f.Writer, "  %s: %s\n", fv.Code, issue)
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", invalid))
	}
	fmt.Fprintln(f.Writer, "✓ All scenarios valid")
	return nil
}

func firstInvalid(result ValidationResult) FileValidation {
	for _, fv := range result.Files {
		if !fv.Valid {
			return fv
		}
	}
	return FileValidation{}
}
