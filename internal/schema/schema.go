// Package schema checks scenario files against an embedded CUE schema.
//
// The harness validates scenarios structurally as it loads them. The CUE
// schema adds range checks on payload values (a velocity must fit in a
// byte, ticks must be non-negative) and reports every problem in a file
// rather than stopping at the first.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.cue
var scenarioSchema string

// Issue is one schema violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every schema violation found in one document.
type ValidationError struct {
	File   string  `json:"file,omitempty"`
	Issues []Issue `json:"issues"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var buf strings.Builder
	if e.File != "" {
		fmt.Fprintf(&buf, "%s: ", e.File)
	}
	fmt.Fprintf(&buf, "%d schema violation(s)", len(e.Issues))
	for _, issue := range e.Issues {
		fmt.Fprintf(&buf, "\n  %s", issue.Message)
	}
	return buf.String()
}

// Validator checks documents against the #Scenario definition.
// A Validator is not safe for concurrent use.
type Validator struct {
	ctx      *cue.Context
	scenario cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(scenarioSchema, cue.Filename("scenario.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile scenario schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath("#Scenario"))
	if !def.Exists() {
		return nil, fmt.Errorf("scenario schema has no #Scenario definition")
	}

	return &Validator{ctx: ctx, scenario: def}, nil
}

// ValidateFile reads path and validates its contents.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scenario file: %w", err)
	}
	if err := v.Validate(data); err != nil {
		if verr, ok := err.(*ValidationError); ok {
			verr.File = path
		}
		return err
	}
	return nil
}

// Validate checks a YAML document against the schema.
// Returns *ValidationError for schema violations, or a plain error if the
// document is not YAML at all.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return &ValidationError{Issues: []Issue{{Message: "document is empty"}}}
	}

	value := v.ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	unified := v.scenario.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationError(err)
	}
	return nil
}

// toValidationError flattens a CUE error list into issues.
func toValidationError(err error) *ValidationError {
	verr := &ValidationError{}
	seen := make(map[string]bool)
	for _, e := range errors.Errors(err) {
		msg := e.Error()
		if seen[msg] {
			continue
		}
		seen[msg] = true
		verr.Issues = append(verr.Issues, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: msg,
		})
	}
	if len(verr.Issues) == 0 {
		verr.Issues = []Issue{{Message: err.Error()}}
	}
	return verr
}
