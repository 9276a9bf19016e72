package extract

import (
	"log/slog"
	"strings"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/seqlog"
	"github.com/roach88/tinv/internal/topology"
)

// Extractor is the token-stream cycle extractor.
//
// Consumption is tracked with a cursor over the immutable log instead of
// splicing text: once a span is consumed the search resumes after it, and
// the remainder is assembled from the unconsumed gaps at the end.
type Extractor struct {
	topo *topology.Topology
}

// New creates an extractor for the given model.
func New(topo *topology.Topology) *Extractor {
	return &Extractor{topo: topo}
}

// Extract consumes every leftmost complete cycle of text.
//
// The scan anchors on the first entry label at or after the cursor. If no
// cycle can complete from that entry, none can complete from a later one
// either, so extraction stops there. Every iteration advances the cursor
// past at least one entry and one exit label, which bounds the number of
// iterations by the number of entry labels.
//
// The error is always nil; it is part of the Engine contract.
func (e *Extractor) Extract(text string) (*ir.ExtractionResult, error) {
	tokens := seqlog.Tokenize(text)
	result := ir.NewExtractionResult(EngineFSM, e.topo.Order())

	var remainder strings.Builder
	consumed := 0 // byte offset up to which text is accounted for
	cursor := 0   // next token index to scan

	for {
		start := e.nextEntry(tokens, cursor)
		if start < 0 {
			break
		}
		end, ok := e.matchCycle(tokens, start)
		if !ok {
			slog.Debug("dangling cycle", "entry_offset", tokens[start].Start)
			break
		}

		cycle := ir.Cycle{
			Start: tokens[start].Start,
			End:   tokens[end].End,
			Type:  Classify(e.topo, tokens[start:end+1]),
		}
		result.Record(cycle)

		slog.Debug("cycle extracted",
			"index", result.Total,
			"start", cycle.Start,
			"end", cycle.End,
			"type", cycle.Type,
		)

		remainder.WriteString(text[consumed:cycle.Start])
		consumed = cycle.End
		cursor = end + 1
	}

	remainder.WriteString(text[consumed:])
	result.Remainder = strings.TrimSpace(remainder.String())
	return result, nil
}

// nextEntry returns the index of the first entry token at or after from,
// or -1.
func (e *Extractor) nextEntry(tokens []ir.Token, from int) int {
	for i := from; i < len(tokens); i++ {
		if tokens[i].Label == e.topo.Entry {
			return i
		}
	}
	return -1
}

// matchState is the position of the matcher within one cycle.
type matchState int

const (
	waitFork matchState = iota
	inBranches
)

// matchCycle runs the cycle matcher from the entry token at start and
// returns the index of the closing exit token.
//
// After the fork, progress through every branch is tracked in parallel;
// each label advances every branch that expects it next. The cycle closes
// on the first exit label seen once any branch is complete.
func (e *Extractor) matchCycle(tokens []ir.Token, start int) (int, bool) {
	branches := e.topo.Branches
	progress := make([]int, len(branches))
	state := waitFork

	for i := start + 1; i < len(tokens); i++ {
		label := tokens[i].Label

		switch state {
		case waitFork:
			if label == e.topo.Fork {
				state = inBranches
			}

		case inBranches:
			if label == e.topo.Exit && anyComplete(branches, progress) {
				return i, true
			}
			for b, branch := range branches {
				if progress[b] < len(branch.Labels) && branch.Labels[progress[b]] == label {
					progress[b]++
				}
			}
		}
	}

	return 0, false
}

func anyComplete(branches []topology.Branch, progress []int) bool {
	for b, branch := range branches {
		if progress[b] == len(branch.Labels) {
			return true
		}
	}
	return false
}
