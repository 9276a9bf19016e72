// Package verify runs both checks over one log and assembles the report.
package verify

import (
	"fmt"

	"github.com/roach88/tinv/internal/config"
	"github.com/roach88/tinv/internal/extract"
	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/tally"
	"github.com/roach88/tinv/internal/topology"
)

// Options selects the model, extraction engine and tally limit.
type Options struct {
	Topology *topology.Topology // nil means topology.Default()
	Engine   string             // "" means extract.EngineFSM
	Limit    int                // <= 0 means config.DefaultLimit
}

// Run executes the cycle extractor and the tally validator over text.
// Both checks always run; a failing extraction never hides the tally.
// An error is returned only when the engine cannot be built or fails.
func Run(text string, opts Options) (*ir.Report, error) {
	topo := opts.Topology
	if topo == nil {
		topo = topology.Default()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = config.DefaultLimit
	}

	engine, err := extract.NewEngine(opts.Engine, topo)
	if err != nil {
		return nil, err
	}
	extraction, err := engine.Extract(text)
	if err != nil {
		return nil, fmt.Errorf("extract cycles: %w", err)
	}

	return &ir.Report{
		LogDigest:  ir.LogDigest(text),
		Extraction: extraction,
		Tally:      tally.New(topo, limit).Validate(text),
	}, nil
}
