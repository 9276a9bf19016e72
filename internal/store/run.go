package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/tinv/internal/ir"
)

// Run is one recorded verification run.
type Run struct {
	ID           string         `json:"id"`
	Seq          int64          `json:"seq"`
	LogPath      string         `json:"log_path"`
	LogDigest    string         `json:"log_digest"`
	Engine       string         `json:"engine"`
	Limit        int            `json:"limit"`
	Total        int            `json:"total"`
	Unclassified int            `json:"unclassified"`
	Remainder    string         `json:"remainder"`
	TallyValid   bool           `json:"tally_valid"`
	OK           bool           `json:"ok"`
	Extraction   map[string]int `json:"extraction,omitempty"` // invariant type -> cycles
	Tally        map[string]int `json:"tally,omitempty"`      // label -> occurrences
	Report       string         `json:"-"`                    // canonical report JSON
	ToolVersion  string         `json:"tool_version"`
}

// NewRun builds a run record from a report. Seq is assigned on write.
func NewRun(id, logPath string, rep *ir.Report) (Run, error) {
	report, err := ir.MarshalCanonical(rep.Canonical())
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}

	run := Run{
		ID:           id,
		LogPath:      logPath,
		LogDigest:    rep.LogDigest,
		Engine:       rep.Extraction.Engine,
		Limit:        rep.Tally.Limit,
		Total:        rep.Extraction.Total,
		Unclassified: rep.Extraction.Unclassified,
		Remainder:    rep.Extraction.Remainder,
		TallyValid:   rep.Tally.Valid(),
		OK:           rep.OK(),
		Extraction:   make(map[string]int, len(rep.Extraction.Counts)),
		Tally:        make(map[string]int, len(rep.Tally.Counts)),
		Report:       string(report),
		ToolVersion:  ir.ToolVersion,
	}
	for it, n := range rep.Extraction.Counts {
		run.Extraction[string(it)] = n
	}
	for l, n := range rep.Tally.Counts {
		run.Tally[string(l)] = n
	}
	return run, nil
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run IDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all IDs have been consumed, to catch test misconfiguration.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all IDs exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
