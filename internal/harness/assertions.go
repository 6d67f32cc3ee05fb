package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/notestore/internal/ir"
	"github.com/roach88/notestore/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	return buf.String()
}

// checkExpect compares a traced step against its expect clause.
// A step without an expect clause must succeed.
func checkExpect(i int, step Step, trace TraceStep) []string {
	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf("step %d (%s): ", i, step.Op)+fmt.Sprintf(format, args...))
	}

	exp := step.Expect
	if exp == nil || exp.Error == "" {
		if trace.Outcome != OutcomeOK {
			fail("unexpected %s for id %s", trace.Outcome, trace.ID)
			return errs
		}
	} else if trace.Outcome != exp.Error {
		fail("expected error %s, got %s", exp.Error, trace.Outcome)
		return errs
	}
	if exp == nil {
		return errs
	}

	if exp.Result != nil {
		actual, _ := trace.Result.(map[string]any)
		if !matchFields(actual, exp.Result) {
			fail("result mismatch: expected %s, got %s", formatFields(exp.Result), formatFields(actual))
		}
	}
	if exp.Count != nil {
		actual, _ := trace.Result.([]any)
		if len(actual) != *exp.Count {
			fail("expected %d entities, got %d", *exp.Count, len(actual))
		}
	}
	return errs
}

// matchFields reports whether every expected key is present in actual with
// an equal value. Extra keys in actual are ignored.
func matchFields(actual, expected map[string]any) bool {
	if actual == nil {
		return len(expected) == 0
	}
	for k, want := range expected {
		got, ok := actual[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares a store value against a YAML-decoded one.
// YAML integers decode as int while entity maps hold int64.
func valuesEqual(actual, expected any) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	if a, ok := toInt64(actual); ok {
		e, ok := toInt64(expected)
		return ok && a == e
	}
	return reflect.DeepEqual(actual, expected)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// formatFields renders a map with sorted keys for error messages.
func formatFields(m map[string]any) string {
	if m == nil {
		return "<none>"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EvaluateAssertions checks all scenario assertions against the result and
// the final store. Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, st *store.Store) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceCount:
			err = assertTraceCount(result, a)
		case AssertFinalCount:
			err = assertFinalCount(st, a)
		case AssertFinalOrder:
			err = assertFinalOrder(st, result.Labels, a)
		case AssertFinalState:
			err = assertFinalState(st, result.Labels, a)
		case AssertFinalAbsent:
			err = assertFinalAbsent(st, result.Labels, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func assertTraceCount(result *Result, a Assertion) error {
	got := result.Count(a.Op)
	if got != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s called %d times", a.Op, a.Count),
			Actual:   fmt.Sprintf("%s called %d times", a.Op, got),
		}
	}
	return nil
}

func assertFinalCount(st *store.Store, a Assertion) error {
	got := st.NoteCount()
	if a.Table == TableEvents {
		got = st.EventCount()
	}
	if got != a.Count {
		return &AssertionError{
			Type:     AssertFinalCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Table),
			Actual:   fmt.Sprintf("%d %s", got, a.Table),
		}
	}
	return nil
}

func assertFinalOrder(st *store.Store, labels map[string]ir.ID, a Assertion) error {
	want := make([]ir.ID, len(a.Refs))
	for i, ref := range a.Refs {
		want[i] = labels[ref]
	}

	got := listIDs(st, a.Table)
	if !reflect.DeepEqual(want, got) {
		return &AssertionError{
			Type:     AssertFinalOrder,
			Expected: fmt.Sprintf("%s %v", a.Table, want),
			Actual:   fmt.Sprintf("%s %v", a.Table, got),
		}
	}
	return nil
}

func assertFinalState(st *store.Store, labels map[string]ir.ID, a Assertion) error {
	id := labels[a.Ref]
	actual, err := lookup(st, a.Table, id)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s %s matching %s", a.Table, a.Ref, formatFields(a.Expect)),
			Actual:   err.Error(),
		}
	}
	if !matchFields(actual, a.Expect) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: formatFields(a.Expect),
			Actual:   formatFields(actual),
		}
	}
	return nil
}

func assertFinalAbsent(st *store.Store, labels map[string]ir.ID, a Assertion) error {
	id := labels[a.Ref]
	if _, err := lookup(st, a.Table, id); err == nil {
		return &AssertionError{
			Type:     AssertFinalAbsent,
			Expected: fmt.Sprintf("%s %s absent", a.Table, a.Ref),
			Actual:   fmt.Sprintf("%s %s present as %s", a.Table, a.Ref, id),
		}
	}
	return nil
}

func lookup(st *store.Store, tableName string, id ir.ID) (map[string]any, error) {
	if tableName == TableEvents {
		e, err := st.GetEvent(id)
		if err != nil {
			return nil, err
		}
		return e.ToMap(), nil
	}
	n, err := st.GetNote(id)
	if err != nil {
		return nil, err
	}
	return n.ToMap(), nil
}

func listIDs(st *store.Store, tableName string) []ir.ID {
	var ids []ir.ID
	if tableName == TableEvents {
		for _, e := range st.ListEvents() {
			ids = append(ids, e.ID)
		}
	} else {
		for _, n := range st.ListNotes() {
			ids = append(ids, n.ID)
		}
	}
	if ids == nil {
		ids = []ir.ID{}
	}
	return ids
}
