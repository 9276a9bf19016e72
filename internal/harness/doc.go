// Package harness runs conformance scenarios against both log checks.
//
// A scenario names a log (inline, a file, or a synthetic generation
// request), optional model overrides, and the outcome both checks must
// produce:
//
//	name: single_top_cycle
//	description: One top-branch cycle with noise between labels
//	log: "T00 x T01 y T02 T03 T04 z T11"
//	limit: 1
//	expect:
//	  ok: true
//	  extract:
//	    total: 1
//	    counts: {IT1: 1}
//	    remainder: ""
//	  tally:
//	    valid: true
//	    conditions: {branch_top_balanced: true}
//
// Expectations are subset matches: only the fields present are checked.
// Every scenario runs both checks, so a tally expectation is evaluated even
// when extraction already failed.
//
// Golden files capture the canonical report of a scenario (see
// ir.Report.Canonical) and live in testdata/golden/<name>.golden.
package harness
