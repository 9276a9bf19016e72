// Package tally implements the structural tally validator.
//
// The validator never locates cycle boundaries. It counts every label of
// the log and checks balance conditions the process model implies: every
// label of a branch fires equally often, entries equal exits, the branch
// openings add up to the exits, and the run reached its configured limit.
package tally

import (
	"slices"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/seqlog"
	"github.com/roach88/tinv/internal/topology"
)

// Condition names shared by every model.
const (
	CondEntriesExitsBalanced = "entries_exits_balanced"
	CondSplitBalanced        = "split_balanced"
	CondLimitReached         = "limit_reached"
)

// Validator checks the balance conditions of a log.
type Validator struct {
	topo  *topology.Topology
	limit int
}

// New creates a validator expecting limit entries and limit exits.
func New(topo *topology.Topology, limit int) *Validator {
	return &Validator{topo: topo, limit: limit}
}

// Validate counts the labels of text and evaluates every condition.
// Conditions are listed per branch first, then entries/exits, split and
// limit.
func (v *Validator) Validate(text string) *ir.TallyResult {
	counts := seqlog.Count(text)
	for _, l := range v.topo.Alphabet() {
		if _, ok := counts[l]; !ok {
			counts[l] = 0
		}
	}

	result := &ir.TallyResult{
		Counts:  counts,
		Labels:  v.reportOrder(counts),
		Entries: counts[v.topo.Entry],
		Exits:   counts[v.topo.Exit],
		Limit:   v.limit,
	}

	for _, b := range v.topo.Branches {
		balanced := balanced(counts, b.Labels)
		result.Branches = append(result.Branches, ir.BranchTally{
			Type:     b.Type,
			Name:     b.Name,
			Count:    counts[b.First()],
			Balanced: balanced,
		})
		result.Conditions = append(result.Conditions, ir.Condition{
			Name:  topology.BalanceCondition(b),
			Holds: balanced,
		})
	}

	result.Conditions = append(result.Conditions,
		ir.Condition{
			Name:  CondEntriesExitsBalanced,
			Holds: result.Entries == result.Exits,
		},
		ir.Condition{
			Name:  CondSplitBalanced,
			Holds: result.ImpliedTotal() == result.Exits,
		},
		ir.Condition{
			Name:  CondLimitReached,
			Holds: result.Entries == v.limit && result.Exits == v.limit,
		},
	)

	return result
}

// reportOrder lists the model alphabet followed by foreign labels sorted.
func (v *Validator) reportOrder(counts map[ir.Label]int) []ir.Label {
	order := v.topo.Alphabet()
	var foreign []ir.Label
	for l := range counts {
		if !slices.Contains(order, l) {
			foreign = append(foreign, l)
		}
	}
	slices.Sort(foreign)
	return append(order, foreign...)
}

// balanced reports whether every label has the same count.
func balanced(counts map[ir.Label]int, labels []ir.Label) bool {
	for _, l := range labels[1:] {
		if counts[l] != counts[labels[0]] {
			return false
		}
	}
	return true
}

// Share returns each branch's share of the implied total in tenths of a
// percent, in branch order. All shares are zero when no branch fired.
func Share(r *ir.TallyResult) []int {
	shares := make([]int, len(r.Branches))
	total := r.ImpliedTotal()
	if total == 0 {
		return shares
	}
	for i, b := range r.Branches {
		shares[i] = (b.Count*1000 + total/2) / total
	}
	return shares
}
