package tally

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/topology"
)

func conditions(r *ir.TallyResult) map[string]bool {
	m := make(map[string]bool, len(r.Conditions))
	for _, c := range r.Conditions {
		m[c.Name] = c.Holds
	}
	return m
}

func TestValidateLiteralExample(t *testing.T) {
	v := New(topology.Default(), 1)

	r := v.Validate("T00 x T01 y T02 T03 T04 z T11")

	assert.Equal(t, 1, r.Counts["T00"])
	assert.Equal(t, 1, r.Counts["T11"])
	assert.Equal(t, 0, r.Counts["T05"])
	require.Len(t, r.Branches, 3)
	assert.Equal(t, 1, r.Branches[0].Count)
	assert.True(t, r.Branches[0].Balanced)
	assert.Equal(t, 1, r.ImpliedTotal())

	conds := conditions(r)
	assert.True(t, conds["branch_top_balanced"])
	assert.True(t, conds["split_balanced"])
	assert.True(t, conds["limit_reached"])
	assert.True(t, r.Valid())
}

func TestValidateSixConditions(t *testing.T) {
	r := New(topology.Default(), 200).Validate("")

	names := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		"branch_top_balanced",
		"branch_mid_balanced",
		"branch_bot_balanced",
		CondEntriesExitsBalanced,
		CondSplitBalanced,
		CondLimitReached,
	}, names)

	// An empty log is balanced but never reaches the limit.
	assert.Equal(t, []string{CondLimitReached}, r.Failed())
}

func TestValidateTopImbalance(t *testing.T) {
	text := "T00 T01 T02 T03 T04 T11 T00 T01 T02 T04 T11"

	r := New(topology.Default(), 2).Validate(text)

	conds := conditions(r)
	assert.False(t, conds["branch_top_balanced"])
	assert.True(t, conds["branch_mid_balanced"])
	assert.True(t, conds[CondEntriesExitsBalanced])
	assert.True(t, conds[CondSplitBalanced])
	assert.False(t, r.Valid())
	assert.Equal(t, []string{"branch_top_balanced"}, r.Failed())
}

func TestValidateEntriesExitsImbalance(t *testing.T) {
	text := "T00 T01 T05 T06 T11 T00 T01"

	r := New(topology.Default(), 2).Validate(text)

	conds := conditions(r)
	assert.False(t, conds[CondEntriesExitsBalanced])
	assert.True(t, conds[CondSplitBalanced])
	assert.False(t, conds[CondLimitReached])
	assert.True(t, r.StopFeeding())
	assert.False(t, r.DrainComplete())
}

func TestValidateSplitImbalance(t *testing.T) {
	// Two exits but only one branch opening.
	text := "T00 T01 T05 T06 T11 T00 T01 T11"

	r := New(topology.Default(), 2).Validate(text)

	conds := conditions(r)
	assert.True(t, conds[CondEntriesExitsBalanced])
	assert.False(t, conds[CondSplitBalanced])
	assert.True(t, conds[CondLimitReached])
}

func TestValidateLimitIsExact(t *testing.T) {
	text := strings.Repeat("T00 T01 T05 T06 T11 ", 3)

	assert.True(t, New(topology.Default(), 3).Validate(text).Valid())
	assert.False(t, New(topology.Default(), 2).Validate(text).Valid())
	assert.False(t, New(topology.Default(), 4).Validate(text).Valid())
}

func TestValidateForeignLabels(t *testing.T) {
	r := New(topology.Default(), 1).Validate("T42 T00 T01 T05 T06 T11 T12")

	assert.Equal(t, 1, r.Counts["T42"])
	assert.Equal(t, 1, r.Counts["T12"])
	require.Len(t, r.Labels, 14)
	assert.Equal(t, []ir.Label{"T12", "T42"}, r.Labels[12:])
	assert.True(t, r.Valid())
}

func TestShare(t *testing.T) {
	r := &ir.TallyResult{
		Branches: []ir.BranchTally{{Count: 1}, {Count: 1}, {Count: 1}},
	}
	assert.Equal(t, []int{333, 333, 333}, Share(r))

	r.Branches = []ir.BranchTally{{Count: 70}, {Count: 65}, {Count: 65}}
	assert.Equal(t, []int{350, 325, 325}, Share(r))

	r.Branches = []ir.BranchTally{{Count: 0}, {Count: 0}}
	assert.Equal(t, []int{0, 0}, Share(r))
}
