package harness

import (
	"fmt"
	"slices"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/profile"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// checkExpect compares one step outcome against its expect clause.
// doc is the returned profile (nil for refusals).
func checkExpect(exp Expect, ev TraceEvent, doc canon.Object) []string {
	var errs []string
	mismatch := func(field string, want, got any) {
		errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if exp.OK != nil && *exp.OK != ev.OK {
		mismatch("ok", *exp.OK, ev.OK)
	}
	if exp.Status != "" && exp.Status != ev.Status {
		mismatch("status", exp.Status, ev.Status)
	}
	if exp.Termination != "" && exp.Termination != ev.Termination {
		mismatch("termination", exp.Termination, ev.Termination)
	}
	if exp.Cause != "" && exp.Cause != ev.Cause {
		mismatch("cause", exp.Cause, ev.Cause)
	}
	if exp.Reasons != nil && !slices.Equal(exp.Reasons, ev.Reasons) {
		mismatch("reasons", exp.Reasons, ev.Reasons)
	}

	if len(exp.Profile) > 0 && doc == nil {
		errs = append(errs, "profile: expected a profile, got none")
		return errs
	}
	for _, path := range sortedKeys(exp.Profile) {
		if err := matchPath(doc, path, exp.Profile[path]); err != nil {
			errs = append(errs, "profile."+err.Error())
		}
	}
	for _, path := range exp.Absent {
		if v, ok := profile.Get(doc, path); ok {
			errs = append(errs, fmt.Sprintf("profile.%s: expected absent, got %s", path, render(v)))
		}
	}
	return errs
}

// EvaluateAssertions checks every assertion against the final state and
// ledger and returns one message per failure.
func EvaluateAssertions(st pk1.State, l audit.Ledger, assertions []Assertion) []string {
	if len(assertions) == 0 {
		return nil
	}
	doc, err := st.Record.Document()
	if err != nil {
		return []string{fmt.Sprintf("final record: %v", err)}
	}

	var errs []string
	for i, a := range assertions {
		if err := evaluate(doc, st, l, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(doc canon.Object, st pk1.State, l audit.Ledger, a Assertion) error {
	switch a.Type {
	case AssertRecord:
		if err := matchPath(doc, a.Path, a.Equals); err != nil {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%v", a.Equals), Actual: err.Error()}
		}
	case AssertRecordAbsent:
		if v, ok := profile.Get(doc, a.Path); ok {
			return &AssertionError{Type: a.Type, Expected: a.Path + " absent", Actual: render(v)}
		}
	case AssertProvenance:
		entry, ok := st.Provenance[a.Path]
		if !ok {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("confidence %d at %s", a.Confidence, a.Path), Actual: "no provenance"}
		}
		if entry.Confidence != a.Confidence {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("confidence %d at %s", a.Confidence, a.Path),
				Actual:   fmt.Sprintf("confidence %d", entry.Confidence),
			}
		}
	case AssertLedgerCount:
		if l.Len() != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d entries", a.Count), Actual: fmt.Sprintf("%d entries", l.Len())}
		}
	case AssertLedgerEvents:
		got := make([]string, l.Len())
		for i, e := range l.Entries {
			got[i] = EntryLabel(e)
		}
		if !slices.Equal(a.Events, got) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%v", a.Events), Actual: fmt.Sprintf("%v", got)}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// matchPath reports whether doc holds want at path.
func matchPath(doc canon.Object, path string, want any) error {
	wantValue, err := canon.FromGo(want)
	if err != nil {
		return fmt.Errorf("%s: bad expected value: %w", path, err)
	}
	got, ok := profile.Get(doc, path)
	if !ok {
		return fmt.Errorf("%s: expected %s, got nothing", path, render(wantValue))
	}
	if !canon.Equal(wantValue, got) {
		return fmt.Errorf("%s: expected %s, got %s", path, render(wantValue), render(got))
	}
	return nil
}

func render(v canon.Value) string {
	b, err := canon.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
