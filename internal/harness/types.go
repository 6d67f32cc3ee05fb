package harness

import "github.com/roach88/notestore/internal/ir"

// Outcome values recorded in the trace.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
)

// TraceStep records one facade call and what the store answered.
type TraceStep struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Label   string `json:"label,omitempty"` // "as" or "ref" of the step
	ID      ir.ID  `json:"id,omitempty"`    // target or assigned identifier
	Outcome string `json:"outcome"`         // "ok" or "not_found"
	Result  any    `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every facade call in order.
	Trace []TraceStep `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Labels maps each "as" label to the identifier the store assigned.
	Labels map[string]ir.ID `json:"labels,omitempty"`

	// Digest is the state digest of the store after the last step.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Errors: []string{},
		Labels: make(map[string]ir.ID),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(step TraceStep) {
	r.Trace = append(r.Trace, step)
}

// Count returns how many trace steps ran op.
func (r *Result) Count(op string) int {
	n := 0
	for _, s := range r.Trace {
		if s.Op == op {
			n++
		}
	}
	return n
}
