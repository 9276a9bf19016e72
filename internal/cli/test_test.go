package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: mid_cycle
description: One middle-branch cycle
log: "T00 T01 T05 T06 T11"
limit: 1
expect:
  ok: true
  extract:
    counts: {IT2: 1}
`

const failingScenario = `name: wrong_count
description: Expects two cycles where there is one
log: "T00 T01 T05 T06 T11"
limit: 1
expect:
  extract:
    total: 2
`

func TestTestCommandMissingArgs(t *testing.T) {
	_, stderr, code := runCLI(t, "test")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, stderr, code := runCLI(t, "test", "/nonexistent/scenarios")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	stdout, _, code := runCLI(t, "test", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	stdout, _, code := runCLI(t, "test", "../harness/testdata/scenarios")
	assert.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "✓ single_top_cycle")
	assert.Contains(t, stdout, "✓ two_way")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFailureAndFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mid.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	stdout, _, code := runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ wrong_count  cycles=1 IT1=0 IT2=1 IT3=0 tally ok")
	assert.Contains(t, stdout, "extract.total: expected 2, got 1")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")

	stdout, _, code = runCLI(t, "test", dir, "--filter", "mid*")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mid.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "mid.golden")

	stdout, _, code := runCLI(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "✓ mid_cycle  cycles=1 IT1=0 IT2=1 IT3=0 tally ok golden updated")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"mid_cycle"`)

	stdout, _, code = runCLI(t, "test", dir)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "golden match")

	require.NoError(t, os.WriteFile(golden, []byte(`{"stale":true}`), 0644))
	stdout, _, code = runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "golden file mismatch (run with --update to regenerate)")
	assert.Contains(t, stdout, `-{"stale":true}`)
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mid.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	stdout, _, code := runCLI(t, "test", dir, "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)

	byName := map[string]ScenarioResult{}
	for _, sr := range resp.Data.Scenarios {
		byName[sr.Name] = sr
	}
	assert.Equal(t, 1, byName["mid_cycle"].Cycles)
	assert.Equal(t, GoldenNone, byName["mid_cycle"].Golden)
	assert.False(t, byName["wrong_count"].Pass)
}

func TestTestCommandReportsTallyFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "residue.yaml", `name: residue
description: A dangling entry leaves a remainder and unbalances the tally
log: "T00 T01 T05 T06 T11 T00 T01 T07"
limit: 1
expect:
  ok: false
`)

	stdout, _, code := runCLI(t, "test", dir)
	assert.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, `✓ residue  cycles=1 IT1=0 IT2=1 IT3=0 remainder="T00 T01 T07" tally failed: branch_bot_balanced,entries_exits_balanced,split_balanced,limit_reached`)
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, stderr, code := runCLI(t, "test", t.TempDir(), "--filter", "[")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid filter")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "typo.yaml", "name: typo\ndescription: d\nlog: T00\nexpectt: {}\n")

	stdout, _, code := runCLI(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ typo.yaml  not run")
	assert.Contains(t, stdout, "load: ")
}
