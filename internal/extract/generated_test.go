package extract

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/synth"
	"github.com/roach88/tinv/internal/topology"
)

func TestExtractGeneratedLogs(t *testing.T) {
	topo := topology.Default()
	eng := New(topo)

	for _, seed := range []uint64{1, 2, 3, 42, 2025} {
		log, err := synth.Generate(topo, synth.Options{Cycles: 200, Seed: seed, Noise: true})
		require.NoError(t, err)

		result, err := eng.Extract(log.Text)
		require.NoError(t, err)

		assert.Equal(t, 200, result.Total, "seed %d", seed)
		assert.Equal(t, 200, result.ClassifiedTotal(), "seed %d", seed)
		assert.Equal(t, log.Counts, result.Counts, "seed %d", seed)
		assert.Empty(t, result.Remainder, "seed %d", seed)
	}
}

func TestExtractCountsInvariantUnderShuffle(t *testing.T) {
	topo := topology.Default()
	eng := New(topo)

	base, err := synth.Generate(topo, synth.Options{Cycles: 60, Seed: 9})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(9, 10))
	for i := 0; i < 5; i++ {
		plan := append([]ir.InvariantType(nil), base.Plan...)
		rng.Shuffle(len(plan), func(a, b int) { plan[a], plan[b] = plan[b], plan[a] })

		log, err := synth.Generate(topo, synth.Options{Plan: plan, Seed: uint64(i), Noise: true})
		require.NoError(t, err)

		result, err := eng.Extract(log.Text)
		require.NoError(t, err)

		assert.Equal(t, 60, result.Total)
		assert.Equal(t, base.Counts, result.Counts)
		assert.Empty(t, result.Remainder)
	}
}

func TestExtractGeneratedLogWithTruncatedTail(t *testing.T) {
	topo := topology.Default()

	log, err := synth.Generate(topo, synth.Options{Cycles: 20, Seed: 5})
	require.NoError(t, err)

	result, err := New(topo).Extract(log.Text + " T00 T01 T05")
	require.NoError(t, err)

	assert.Equal(t, 20, result.Total)
	assert.Equal(t, log.Counts, result.Counts)
	assert.Equal(t, "T00 T01 T05", result.Remainder)
}

func TestPatternExtractGeneratedNoisyLogs(t *testing.T) {
	topo := topology.Default()
	eng, err := NewPattern(topo)
	require.NoError(t, err)

	for _, seed := range []uint64{4, 17} {
		log, err := synth.Generate(topo, synth.Options{Cycles: 40, Seed: seed, Noise: true})
		require.NoError(t, err)

		result, err := eng.Extract(log.Text)
		require.NoError(t, err)

		assert.Equal(t, 40, result.Total, "seed %d", seed)
		assert.Equal(t, log.Counts, result.Counts, "seed %d", seed)
		assert.Empty(t, result.Remainder, "seed %d", seed)
	}
}
