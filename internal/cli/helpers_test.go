package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout, stderr and
// the exit code. Environment defaults are cleared first.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return runCLIWithEnv(t, nil, args...)
}

// runCLIWithEnv is runCLI with the given TINV_* variables set.
func runCLIWithEnv(t *testing.T, env map[string]string, args ...string) (string, string, int) {
	t.Helper()
	for _, key := range []string{"TINV_LOG", "TINV_LIMIT", "TINV_TOPOLOGY", "TINV_DB", "TINV_ENGINE"} {
		t.Setenv(key, env[key])
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	code := Execute(cmd, args, stderr)
	return stdout.String(), stderr.String(), code
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const mixedLog = "T00 T01 T02 T03 T04 T11\nT00 T01 T05 T06 T11\nT00 T01 T07 T08 T09 T10 T11\n"

const twoWayCUE = `
topology: {
	name:  "two-way"
	entry: "T00"
	fork:  "T01"
	exit:  "T09"
	branches: [
		{type: "ITA", key: "fast", name: "fast path", labels: ["T02", "T03"]},
		{type: "ITB", key: "slow", name: "slow path", labels: ["T04", "T05", "T06"]},
	]
}
`
