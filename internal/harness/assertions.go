package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/tinv/internal/ir"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Field    string // dotted expectation path, e.g. "extract.counts.IT1"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

func mismatch(field string, expected, actual any) *AssertionError {
	return &AssertionError{
		Field:    field,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// checkExpect evaluates every expectation and returns all failures
// (no fail-fast). Map expectations are checked in key order.
func checkExpect(rep *ir.Report, exp Expect) []error {
	var errs []error

	if exp.OK != nil && *exp.OK != rep.OK() {
		errs = append(errs, mismatch("ok", *exp.OK, rep.OK()))
	}
	if exp.Extract != nil {
		errs = append(errs, checkExtract(rep.Extraction, exp.Extract)...)
	}
	if exp.Tally != nil {
		errs = append(errs, checkTally(rep.Tally, exp.Tally)...)
	}

	return errs
}

func checkExtract(r *ir.ExtractionResult, exp *ExtractExpect) []error {
	var errs []error

	if exp.Total != nil && *exp.Total != r.Total {
		errs = append(errs, mismatch("extract.total", *exp.Total, r.Total))
	}
	if exp.Unclassified != nil && *exp.Unclassified != r.Unclassified {
		errs = append(errs, mismatch("extract.unclassified", *exp.Unclassified, r.Unclassified))
	}
	if exp.Remainder != nil && *exp.Remainder != r.Remainder {
		errs = append(errs, mismatch("extract.remainder", quote(*exp.Remainder), quote(r.Remainder)))
	}
	for _, it := range ir.SortedKeys(exp.Counts) {
		got, ok := r.Counts[ir.InvariantType(it)]
		if !ok {
			errs = append(errs, mismatch("extract.counts."+it, exp.Counts[it], "unknown invariant type"))
			continue
		}
		if got != exp.Counts[it] {
			errs = append(errs, mismatch("extract.counts."+it, exp.Counts[it], got))
		}
	}

	return errs
}

func checkTally(r *ir.TallyResult, exp *TallyExpect) []error {
	var errs []error

	if exp.Valid != nil && *exp.Valid != r.Valid() {
		actual := fmt.Sprintf("%v (failed: %s)", r.Valid(), strings.Join(r.Failed(), ", "))
		errs = append(errs, &AssertionError{
			Field:    "tally.valid",
			Expected: fmt.Sprintf("%v", *exp.Valid),
			Actual:   actual,
		})
	}
	if exp.ImpliedTotal != nil && *exp.ImpliedTotal != r.ImpliedTotal() {
		errs = append(errs, mismatch("tally.implied_total", *exp.ImpliedTotal, r.ImpliedTotal()))
	}
	for _, name := range ir.SortedKeys(exp.Conditions) {
		c, ok := r.Condition(name)
		if !ok {
			errs = append(errs, mismatch("tally.conditions."+name, exp.Conditions[name], "unknown condition"))
			continue
		}
		if c.Holds != exp.Conditions[name] {
			errs = append(errs, mismatch("tally.conditions."+name, exp.Conditions[name], c.Holds))
		}
	}
	for _, l := range ir.SortedKeys(exp.Counts) {
		if got := r.Counts[ir.Label(l)]; got != exp.Counts[l] {
			errs = append(errs, mismatch("tally.counts."+l, exp.Counts[l], got))
		}
	}

	return errs
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
