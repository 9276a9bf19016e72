package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/topology"
)

// DefaultPatternTimeout bounds a single backtracking search.
const DefaultPatternTimeout = 30 * time.Second

// PatternExtractor extracts cycles with backtracking regular expressions
// over the raw text. Each consumed span is spliced out of a working copy of
// the log before the next search, so labels separated by a consumed span
// become adjacent.
//
// Cycle positions are not tracked: the result's Cycles is left empty.
type PatternExtractor struct {
	topo   *topology.Topology
	cycle  *regexp2.Regexp
	strict []strictPattern
}

type strictPattern struct {
	typ ir.InvariantType
	re  *regexp2.Regexp
}

// NewPattern compiles the permissive cycle pattern and one strict
// full-span pattern per branch.
func NewPattern(topo *topology.Topology) (*PatternExtractor, error) {
	return NewPatternWithTimeout(topo, DefaultPatternTimeout)
}

// NewPatternWithTimeout is NewPattern with an explicit per-search timeout.
func NewPatternWithTimeout(topo *topology.Topology, timeout time.Duration) (*PatternExtractor, error) {
	alternatives := make([]string, len(topo.Branches))
	for i, b := range topo.Branches {
		alternatives[i] = gapped(b.Labels...)
	}

	cyclePattern := gapped(topo.Entry, topo.Fork) + lazyGap +
		"(?:" + strings.Join(alternatives, "|") + ")" +
		lazyGap + regexp2.Escape(string(topo.Exit))

	cycle, err := compilePattern(cyclePattern, timeout)
	if err != nil {
		return nil, err
	}

	p := &PatternExtractor{topo: topo, cycle: cycle}
	for _, b := range topo.Branches {
		labels := append([]ir.Label{topo.Entry, topo.Fork}, b.Labels...)
		labels = append(labels, topo.Exit)

		re, err := compilePattern(`\A`+gapped(labels...)+`\z`, timeout)
		if err != nil {
			return nil, err
		}
		p.strict = append(p.strict, strictPattern{typ: b.Type, re: re})
	}

	return p, nil
}

const lazyGap = ".*?"

// gapped joins escaped labels with lazy gaps.
func gapped(labels ...ir.Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = regexp2.Escape(string(l))
	}
	return strings.Join(parts, lazyGap)
}

func compilePattern(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	re.MatchTimeout = timeout
	return re, nil
}

// Extract consumes leftmost cycle matches until none remains.
func (p *PatternExtractor) Extract(text string) (*ir.ExtractionResult, error) {
	result := ir.NewExtractionResult(EnginePattern, p.topo.Order())

	// Match offsets are rune indexes, so the working copy is kept as runes
	// and spliced in place.
	data := []rune(text)

	for {
		m, err := p.cycle.FindRunesMatch(data)
		if err != nil {
			return nil, fmt.Errorf("pattern search: %w", err)
		}
		if m == nil {
			break
		}

		typ, err := p.classify(m.String())
		if err != nil {
			return nil, err
		}
		result.Count(typ)

		slog.Debug("cycle extracted",
			"index", result.Total,
			"engine", EnginePattern,
			"length", m.Length,
			"type", typ,
		)

		data = append(data[:m.Index], data[m.Index+m.Length:]...)
	}

	result.Remainder = strings.TrimSpace(string(data))
	return result, nil
}

// classify returns the type of the first strict pattern matching the whole
// span, or "" when none does.
func (p *PatternExtractor) classify(span string) (ir.InvariantType, error) {
	for _, sp := range p.strict {
		ok, err := sp.re.MatchString(span)
		if err != nil {
			return "", fmt.Errorf("classify %s: %w", sp.typ, err)
		}
		if ok {
			return sp.typ, nil
		}
	}
	return "", nil
}
