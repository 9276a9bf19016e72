// Package synth generates well-formed sequence logs for a process model.
//
// Generated logs are deterministic for a given seed. They are used by tests
// and by the generate command to produce fixtures that every check accepts.
package synth

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/topology"
)

// DefaultNoise is the vocabulary noise words are drawn from. None of the
// words contains a label.
var DefaultNoise = []string{"tick", "idle", "fire", "ok", "--", "wait", "#"}

// Options configures generation.
type Options struct {
	// Cycles is the number of cycles to generate. Ignored when Plan is set.
	Cycles int

	// Seed makes branch choices and noise reproducible.
	Seed uint64

	// Plan fixes the branch of every cycle, in order.
	Plan []ir.InvariantType

	// Noise inserts up to two noise words (and occasional line breaks)
	// between the labels of a cycle. Cycles are always separated by a
	// single space, since text outside every cycle is remainder.
	Noise bool

	// Words overrides DefaultNoise.
	Words []string
}

// Log is a generated sequence together with its composition.
type Log struct {
	Text   string
	Plan   []ir.InvariantType
	Counts map[ir.InvariantType]int
}

// Generate builds a log of complete, non-overlapping cycles.
func Generate(topo *topology.Topology, opts Options) (*Log, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	plan := opts.Plan
	if plan == nil {
		plan = make([]ir.InvariantType, opts.Cycles)
		for i := range plan {
			plan[i] = topo.Branches[rng.IntN(len(topo.Branches))].Type
		}
	}

	words := opts.Words
	if len(words) == 0 {
		words = DefaultNoise
	}

	log := &Log{
		Plan:   plan,
		Counts: make(map[ir.InvariantType]int, len(topo.Branches)),
	}
	for _, it := range topo.Order() {
		log.Counts[it] = 0
	}

	var sb strings.Builder
	for i, it := range plan {
		branch, ok := topo.Branch(it)
		if !ok {
			return nil, fmt.Errorf("plan[%d]: unknown invariant type %s", i, it)
		}
		log.Counts[it]++

		labels := append([]ir.Label{topo.Entry, topo.Fork}, branch.Labels...)
		labels = append(labels, topo.Exit)

		if i > 0 {
			sb.WriteByte(' ')
		}
		for j, l := range labels {
			if j > 0 {
				sb.WriteString(separator(rng, opts.Noise, words))
			}
			sb.WriteString(string(l))
		}
	}

	log.Text = sb.String()
	return log, nil
}

// separator returns the text placed between two labels of one cycle.
func separator(rng *rand.Rand, noise bool, words []string) string {
	if !noise {
		return " "
	}

	var sb strings.Builder
	sb.WriteByte(' ')
	for n := rng.IntN(3); n > 0; n-- {
		sb.WriteString(words[rng.IntN(len(words))])
		if rng.IntN(8) == 0 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
