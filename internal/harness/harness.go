package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/seqlog"
	"github.com/roach88/tinv/internal/synth"
	"github.com/roach88/tinv/internal/topology"
	"github.com/roach88/tinv/internal/verify"
)

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load the model (scenario topology or the reference model)
//  2. Materialize the log (inline, file, or generated)
//  3. Run both checks
//  4. Evaluate every expectation
//
// Expectation failures are reported in the result. An error is returned
// only when the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	topo := topology.Default()
	if scenario.Topology != "" {
		t, err := topology.LoadCUE(scenario.Topology)
		if err != nil {
			return nil, err
		}
		topo = t
	}

	text, err := scenarioLog(scenario, topo)
	if err != nil {
		return nil, err
	}

	rep, err := verify.Run(text, verify.Options{
		Topology: topo,
		Engine:   scenario.Engine,
		Limit:    scenario.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Report = rep
	for _, e := range checkExpect(rep, scenario.Expect) {
		result.AddError(e.Error())
	}

	slog.Debug("scenario executed",
		"name", scenario.Name,
		"pass", result.Pass,
		"cycles", rep.Extraction.Total,
		"tally_valid", rep.Tally.Valid(),
	)

	return result, nil
}

// scenarioLog returns the log text the scenario describes.
func scenarioLog(s *Scenario, topo *topology.Topology) (string, error) {
	switch {
	case s.LogFile != "":
		return seqlog.Read(s.LogFile)
	case s.Generate != nil:
		plan := make([]ir.InvariantType, len(s.Generate.Plan))
		for i, it := range s.Generate.Plan {
			plan[i] = ir.InvariantType(it)
		}
		if len(plan) == 0 {
			plan = nil
		}
		log, err := synth.Generate(topo, synth.Options{
			Cycles: s.Generate.Cycles,
			Seed:   s.Generate.Seed,
			Plan:   plan,
			Noise:  s.Generate.Noise,
		})
		if err != nil {
			return "", fmt.Errorf("generate log: %w", err)
		}
		return log.Text, nil
	default:
		return s.Log, nil
	}
}
