package store

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinv/internal/ir"
)

func TestNewRunFromReport(t *testing.T) {
	run := testRun(t, "run-1", "T00 T01 T05 T06 T11", 1)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "fsm", run.Engine)
	assert.Equal(t, 1, run.Limit)
	assert.Equal(t, 1, run.Total)
	assert.True(t, run.TallyValid)
	assert.True(t, run.OK)
	assert.Equal(t, ir.LogDigest("T00 T01 T05 T06 T11"), run.LogDigest)
	assert.Equal(t, map[string]int{"IT1": 0, "IT2": 1, "IT3": 0}, run.Extraction)
	assert.Equal(t, 1, run.Tally["T05"])
	assert.Equal(t, ir.ToolVersion, run.ToolVersion)
	assert.Contains(t, run.Report, `"ok":true`)
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "UUIDv7 strings sort by creation time")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestFixedGeneratorConcurrent(t *testing.T) {
	g := NewFixedGenerator("a", "b", "c", "d")
	seen := make(chan string, 4)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Generate()
		}()
	}
	wg.Wait()
	close(seen)

	got := map[string]bool{}
	for id := range seen {
		got[id] = true
	}
	assert.Len(t, got, 4)
}
