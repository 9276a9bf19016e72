package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/seqlog"
	"github.com/roach88/tinv/internal/store"
)

func TestHistoryRequiresDB(t *testing.T) {
	stdout, _, code := runCLI(t, "history")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "--db is required")
}

func TestHistoryMissingDB(t *testing.T) {
	stdout, _, code := runCLI(t, "history", "--db", filepath.Join(t.TempDir(), "none.db"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "database not found")
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stdout, _, code := runCLI(t, "history", "--db", db)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No runs recorded.")
}

func TestHistoryListsRunsInOrder(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	good := writeFile(t, dir, "good.txt", mixedLog)
	bad := writeFile(t, dir, "bad.txt", "T00 T01 T05 T06 T11 T00")

	_, _, code := runCLI(t, "check", good, "--limit", "3", "--db", db)
	require.Equal(t, ExitSuccess, code)
	_, _, code = runCLI(t, "check", bad, "--limit", "3", "--db", db, "--engine", "pattern")
	require.Equal(t, ExitFailure, code)
	_, _, code = runCLI(t, "check", good, "--limit", "4", "--db", db)
	require.Equal(t, ExitFailure, code)

	stdout, _, code := runCLI(t, "history", "--db", db, "--format", "json")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Runs, 3)

	runs := resp.Data.Runs
	assert.Equal(t, []int64{1, 2, 3}, []int64{runs[0].Seq, runs[1].Seq, runs[2].Seq})
	assert.True(t, runs[0].OK)
	assert.Equal(t, "pattern", runs[1].Engine)
	assert.Equal(t, "T00", runs[1].Remainder)
	assert.False(t, runs[2].TallyValid)
	assert.Equal(t, runs[0].LogDigest, runs[2].LogDigest)

	stdout, _, code = runCLI(t, "history", "--db", db, "--digest", runs[0].LogDigest)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, runs[0].ID)
	assert.Contains(t, stdout, runs[2].ID)
	assert.NotContains(t, stdout, runs[1].ID)
	assert.Contains(t, stdout, "tally")

	text, err := seqlog.Read(good)
	require.NoError(t, err)
	assert.Equal(t, ir.LogDigest(text), runs[0].LogDigest)
}
