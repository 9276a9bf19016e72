package topology

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinv/internal/ir"
)

const twoBranchCUE = `
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

func TestCompileCUE(t *testing.T) {
	topo, err := CompileCUE("two.cue", []byte(twoBranchCUE))
	require.NoError(t, err)

	assert.Equal(t, "two-way", topo.Name)
	assert.Equal(t, ir.Label("T09"), topo.Exit)
	require.Len(t, topo.Branches, 2)
	assert.Equal(t, ir.InvariantType("ITA"), topo.Branches[0].Type)
	assert.Equal(t, []ir.Label{"T04", "T05", "T06"}, topo.Branches[1].Labels)
	assert.Equal(t, []ir.InvariantType{"ITA", "ITB"}, topo.Order())
}

func TestLoadCUEFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.cue")
	require.NoError(t, os.WriteFile(path, []byte(twoBranchCUE), 0644))

	topo, err := LoadCUE(path)
	require.NoError(t, err)
	assert.Equal(t, "two-way", topo.Name)
}

func TestLoadCUEMissingFile(t *testing.T) {
	_, err := LoadCUE(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompileCUEErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
		invalid bool
	}{
		{
			name:    "syntax error",
			src:     "topology: {",
			wantMsg: "",
		},
		{
			name:    "missing topology field",
			src:     `other: 1`,
			wantMsg: "no topology field found",
		},
		{
			name: "invalid model",
			src: `
topology: {
	entry: "T00"
	fork:  "T01"
	exit:  "T01"
	branches: [{type: "IT1", key: "top", labels: ["T02"]}]
}
`,
			wantMsg: "invalid topology",
			invalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileCUE("bad.cue", []byte(tt.src))
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			if tt.wantMsg != "" {
				assert.Contains(t, le.Message, tt.wantMsg)
			}
			if tt.invalid {
				require.NotEmpty(t, le.Invalid)
				assert.Equal(t, ErrDuplicateLabel, le.Invalid[0].Code)
			}
		})
	}
}
