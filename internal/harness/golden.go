package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tinv/internal/ir"
)

// Snapshot returns the canonical JSON golden content for a scenario result.
// The log digest is left out so that equivalent logs share a snapshot.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"report":        result.Report.Canonical(),
	})
}

// RunWithGolden executes a scenario and compares the report against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's report against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// ErrNoGolden is returned by CompareGolden when a scenario has no golden file.
var ErrNoGolden = errors.New("no golden file")

// GoldenPath returns the golden file of a scenario file:
// <dir>/golden/<stem>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", stem+".golden")
}

// WriteGolden stores the snapshot of result at path.
func WriteGolden(path, scenarioName string, result *Result) error {
	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// CompareGolden diffs the snapshot of result against the golden file at
// path, ignoring trailing newlines in the file. The diff is empty when
// they match.
func CompareGolden(path, scenarioName string, result *Result) (string, error) {
	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoGolden
	}
	if err != nil {
		return "", fmt.Errorf("read golden file: %w", err)
	}

	got, err := Snapshot(scenarioName, result)
	if err != nil {
		return "", err
	}
	want = bytes.TrimRight(want, "\n")
	if bytes.Equal(want, got) {
		return "", nil
	}
	return goldie.Diff(goldie.ClassicDiff, string(got)+"\n", string(want)+"\n"), nil
}
