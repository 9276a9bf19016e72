package extract

import (
	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/topology"
)

// Classify tests a candidate span against the strict template of every
// branch, in priority order, and returns the type of the first template the
// whole span satisfies. It returns "" when none does.
//
// A strict template for branch B requires the span to open with the entry
// label and close with the exit label, with the fork label followed by B's
// labels, in order, somewhere in between.
func Classify(topo *topology.Topology, span []ir.Token) ir.InvariantType {
	if len(span) < 2 || span[0].Label != topo.Entry || span[len(span)-1].Label != topo.Exit {
		return ""
	}
	inner := span[1 : len(span)-1]

	for _, b := range topo.Branches {
		template := make([]ir.Label, 0, len(b.Labels)+1)
		template = append(template, topo.Fork)
		template = append(template, b.Labels...)
		if isSubsequence(template, inner) {
			return b.Type
		}
	}
	return ""
}

// isSubsequence reports whether want appears in tokens in order, with
// arbitrary tokens in between.
func isSubsequence(want []ir.Label, tokens []ir.Token) bool {
	i := 0
	for _, tok := range tokens {
		if i == len(want) {
			break
		}
		if tok.Label == want[i] {
			i++
		}
	}
	return i == len(want)
}
