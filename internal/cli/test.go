package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tinv/internal/harness"
	"github.com/roach88/tinv/internal/ir"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden files from the current reports
	Filter string // glob over scenario file names, without extension
}

// Golden file states reported per scenario.
const (
	GoldenNone     = "none"
	GoldenMatch    = "match"
	GoldenMismatch = "mismatch"
	GoldenUpdated  = "updated"
)

// ScenarioResult is the outcome of one scenario: what both checks saw and
// whether the expectations and golden file held.
type ScenarioResult struct {
	File      string                   `json:"file"`
	Name      string                   `json:"name"`
	Pass      bool                     `json:"pass"`
	Cycles    int                      `json:"cycles"`
	Counts    map[ir.InvariantType]int `json:"counts,omitempty"`
	Remainder string                   `json:"remainder,omitempty"`
	Failed    []string                 `json:"failed_conditions,omitempty"`
	Golden    string                   `json:"golden"`
	Errors    []string                 `json:"errors,omitempty"`
}

// TestResult aggregates every scenario run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario under a directory through both checks.

Each scenario names a log and the outcome the extractor and the tally must
produce. When <scenarios-dir>/golden/<file>.golden exists, the canonical
report must match it as well; --update rewrites it instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (missing directory, bad filter)

Examples:
  tinv test ./scenarios
  tinv test ./scenarios --filter "dangling*"
  tinv test ./scenarios --update
  tinv test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files from the current reports")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose file name matches this glob")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", dir), nil)
	}
	if _, err := filepath.Match(opts.Filter, ""); err != nil {
		return f.fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid filter %q", opts.Filter), err)
	}

	files, err := scenarioFiles(dir, opts.Filter)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, "failed to list scenarios", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenarioFile(file, opts.Update)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if f.JSON() {
		if result.Failed == 0 {
			return f.Success(result)
		}
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := f.Failure(result, ErrCodeTestFailed, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	writeTestText(f.Writer, result)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// scenarioFiles lists .yaml/.yml files under dir in lexical order. The
// filter applies to the file name without its extension.
func scenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenarioFile loads and runs one scenario, then checks or rewrites its
// golden file. Load and execution errors fail the scenario, not the command.
func runScenarioFile(file string, update bool) ScenarioResult {
	sr := ScenarioResult{File: file, Name: filepath.Base(file), Golden: GoldenNone}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := harness.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("run: %v", err)}
		return sr
	}

	ex := result.Report.Extraction
	sr.Cycles = ex.Total
	sr.Counts = ex.Counts
	sr.Remainder = ex.Remainder
	sr.Failed = result.Report.Tally.Failed()
	sr.Errors = result.Errors
	sr.Pass = result.Pass

	golden := harness.GoldenPath(file)
	if update {
		if err := harness.WriteGolden(golden, scenario.Name, result); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("golden: %v", err))
			return sr
		}
		sr.Golden = GoldenUpdated
		return sr
	}

	diff, err := harness.CompareGolden(golden, scenario.Name, result)
	switch {
	case errors.Is(err, harness.ErrNoGolden):
	case err != nil:
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("golden: %v", err))
	case diff != "":
		sr.Pass = false
		sr.Golden = GoldenMismatch
		sr.Errors = append(sr.Errors, "golden file mismatch (run with --update to regenerate)\n"+diff)
	default:
		sr.Golden = GoldenMatch
	}
	return sr
}

// writeTestText prints one line per scenario with what the checks found,
// then the failures and a summary.
func writeTestText(w io.Writer, result TestResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, sr := range result.Scenarios {
		mark := "✓"
		if !sr.Pass {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s\n", mark, sr.Name, scenarioSummary(sr))
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(e, "\n", "\n    "))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
}

// scenarioSummary renders cycles, branch counts, remainder and tally state,
// e.g. "cycles=3 IT1=1 IT2=1 IT3=1 tally ok".
func scenarioSummary(sr ScenarioResult) string {
	if sr.Counts == nil {
		return "not run"
	}

	parts := []string{fmt.Sprintf("cycles=%d", sr.Cycles)}
	for _, it := range slices.Sorted(maps.Keys(sr.Counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", it, sr.Counts[it]))
	}
	if sr.Remainder != "" {
		parts = append(parts, fmt.Sprintf("remainder=%q", sr.Remainder))
	}
	if len(sr.Failed) == 0 {
		parts = append(parts, "tally ok")
	} else {
		parts = append(parts, "tally failed: "+strings.Join(sr.Failed, ","))
	}
	switch sr.Golden {
	case GoldenMatch, GoldenUpdated:
		parts = append(parts, "golden "+sr.Golden)
	}
	return strings.Join(parts, " ")
}
