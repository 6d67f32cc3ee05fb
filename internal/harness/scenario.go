package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/notestore/internal/ir"
)

// Scenario defines a sequence of store operations and the checks to run
// against them.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are executed in order against a single fresh store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final store contents.
	// Supported types: trace_count, final_count, final_order, final_state, final_absent
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single call on the store facade.
type Step struct {
	// Op names the facade operation, e.g. "add_note" or "list_events".
	Op string `yaml:"op"`

	// As binds the identifier of an added entity to a label.
	As string `yaml:"as,omitempty"`

	// Ref names the label of the target entity.
	Ref string `yaml:"ref,omitempty"`

	// ID is a literal target identifier, used instead of Ref.
	ID string `yaml:"id,omitempty"`

	// Note is the payload for add_note.
	Note *ir.NoteInput `yaml:"note,omitempty"`

	// Event is the payload for add_event.
	Event *ir.EventInput `yaml:"event,omitempty"`

	// Patch is the partial update for update_note / update_event.
	// Kept as a raw node because its shape depends on Op.
	Patch yaml.Node `yaml:"patch,omitempty"`

	// Range bounds notes_in_range / events_in_range.
	Range *RangeSpec `yaml:"range,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// RangeSpec bounds a range query to [Start, End). A non-empty Track
// restricts the query to entities on that track.
type RangeSpec struct {
	Start          ir.Ticks `yaml:"start"`
	End            ir.Ticks `yaml:"end"`
	WithinDuration bool     `yaml:"within_duration,omitempty"`
	Track          ir.ID    `yaml:"track,omitempty"`
}

// ExpectClause specifies expected step behavior.
type ExpectClause struct {
	// Error is the expected failure, currently only "not_found".
	Error string `yaml:"error,omitempty"`

	// Result is a subset match on the returned entity.
	Result map[string]any `yaml:"result,omitempty"`

	// Count is the expected length of a list result.
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the trace or the final store contents.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_count": Op appears exactly Count times in the trace
	// - "final_count": Table holds exactly Count entities
	// - "final_order": Table lists exactly the Refs, in that order
	// - "final_state": entity Ref in Table matches Expect (subset)
	// - "final_absent": entity Ref is not in Table
	Type string `yaml:"type"`

	Op     string         `yaml:"op,omitempty"`
	Table  string         `yaml:"table,omitempty"`
	Ref    string         `yaml:"ref,omitempty"`
	Refs   []string       `yaml:"refs,omitempty"`
	Count  int            `yaml:"count,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Operation names.
const (
	OpAddNote      = "add_note"
	OpGetNote      = "get_note"
	OpUpdateNote   = "update_note"
	OpRemoveNote   = "remove_note"
	OpListNotes    = "list_notes"
	OpNotesInRange = "notes_in_range"

	OpAddEvent      = "add_event"
	OpGetEvent      = "get_event"
	OpUpdateEvent   = "update_event"
	OpRemoveEvent   = "remove_event"
	OpListEvents    = "list_events"
	OpEventsInRange = "events_in_range"
)

// Assertion type constants.
const (
	AssertTraceCount  = "trace_count"
	AssertFinalCount  = "final_count"
	AssertFinalOrder  = "final_order"
	AssertFinalState  = "final_state"
	AssertFinalAbsent = "final_absent"
)

// Table names used by assertions.
const (
	TableNotes  = "notes"
	TableEvents = "events"
)

// ErrorNotFound is the expect.error value for a missing identifier.
const ErrorNotFound = "not_found"

type opShape struct {
	target   bool // needs ref or id
	adds     bool // may bind "as"
	payload  string
	patch    []string
	rangeArg bool
	list     bool
}

var notePatchFields = []string{"ticks", "duration", "velocity", "note_number", "track_id"}
var eventPatchFields = []string{"ticks", "kind", "channel", "controller", "value", "track_id"}

var opShapes = map[string]opShape{
	OpAddNote:       {adds: true, payload: "note"},
	OpGetNote:       {target: true},
	OpUpdateNote:    {target: true, patch: notePatchFields},
	OpRemoveNote:    {target: true},
	OpListNotes:     {list: true},
	OpNotesInRange:  {rangeArg: true, list: true},
	OpAddEvent:      {adds: true, payload: "event"},
	OpGetEvent:      {target: true},
	OpUpdateEvent:   {target: true, patch: eventPatchFields},
	OpRemoveEvent:   {target: true},
	OpListEvents:    {list: true},
	OpEventsInRange: {rangeArg: true, list: true},
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
// Returns an error if the document is malformed, contains unknown fields
// (typos), or fails validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and that every
// step carries exactly the arguments its operation needs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	labels := make(map[string]bool)
	for i, step := range s.Steps {
		if err := validateStep(step, labels); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.As != "" {
			labels[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, labels); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step, labels map[string]bool) error {
	shape, ok := opShapes[step.Op]
	if !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if shape.target {
		if (step.Ref == "") == (step.ID == "") {
			return fmt.Errorf("%s: exactly one of ref or id is required", step.Op)
		}
		if step.Ref != "" && !labels[step.Ref] {
			return fmt.Errorf("%s: ref %q is not bound by an earlier step", step.Op, step.Ref)
		}
	} else if step.Ref != "" || step.ID != "" {
		return fmt.Errorf("%s: takes no ref or id", step.Op)
	}

	if step.As != "" {
		if !shape.adds {
			return fmt.Errorf("%s: as is only valid on add operations", step.Op)
		}
		if labels[step.As] {
			return fmt.Errorf("%s: label %q is already bound", step.Op, step.As)
		}
	}

	if (shape.payload == "note") != (step.Note != nil) {
		return fmt.Errorf("%s: note payload is only valid on, and required by, %s", step.Op, OpAddNote)
	}
	if (shape.payload == "event") != (step.Event != nil) {
		return fmt.Errorf("%s: event payload is only valid on, and required by, %s", step.Op, OpAddEvent)
	}

	if shape.patch == nil {
		if step.Patch.Kind != 0 {
			return fmt.Errorf("%s: takes no patch", step.Op)
		}
	} else if err := validatePatch(step.Patch, shape.patch); err != nil {
		return fmt.Errorf("%s: %w", step.Op, err)
	}

	if shape.rangeArg != (step.Range != nil) {
		return fmt.Errorf("%s: range is only valid on, and required by, range queries", step.Op)
	}

	if step.Expect != nil {
		exp := step.Expect
		if exp.Error != "" && exp.Error != ErrorNotFound {
			return fmt.Errorf("%s: unknown expected error %q", step.Op, exp.Error)
		}
		if exp.Error != "" && (exp.Result != nil || exp.Count != nil) {
			return fmt.Errorf("%s: expect.error excludes result and count", step.Op)
		}
		if exp.Count != nil && !shape.list {
			return fmt.Errorf("%s: expect.count is only valid on list operations", step.Op)
		}
		if exp.Result != nil && shape.list {
			return fmt.Errorf("%s: expect.result is not valid on list operations", step.Op)
		}
	}

	return nil
}

// validatePatch checks that an optional patch node is a mapping with known keys.
// An absent patch is the empty updater.
func validatePatch(n yaml.Node, allowed []string) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("patch must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		known := false
		for _, f := range allowed {
			if f == key {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("patch: unknown field %q", key)
		}
	}
	return nil
}

func validateAssertion(a Assertion, labels map[string]bool) error {
	checkTable := func() error {
		if a.Table != TableNotes && a.Table != TableEvents {
			return fmt.Errorf("%s: table must be %q or %q", a.Type, TableNotes, TableEvents)
		}
		return nil
	}
	checkRef := func(ref string) error {
		if !labels[ref] {
			return fmt.Errorf("%s: ref %q is not bound by any step", a.Type, ref)
		}
		return nil
	}

	switch a.Type {
	case AssertTraceCount:
		if _, ok := opShapes[a.Op]; !ok {
			return fmt.Errorf("%s: unknown op %q", a.Type, a.Op)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", a.Type)
		}
	case AssertFinalCount:
		if err := checkTable(); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", a.Type)
		}
	case AssertFinalOrder:
		if err := checkTable(); err != nil {
			return err
		}
		for _, ref := range a.Refs {
			if err := checkRef(ref); err != nil {
				return err
			}
		}
	case AssertFinalState:
		if err := checkTable(); err != nil {
			return err
		}
		if err := checkRef(a.Ref); err != nil {
			return err
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("%s: expect is required", a.Type)
		}
	case AssertFinalAbsent:
		if err := checkTable(); err != nil {
			return err
		}
		if err := checkRef(a.Ref); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
