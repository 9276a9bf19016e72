package extract

import (
	"fmt"

	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/topology"
)

// Engine names.
const (
	EngineFSM     = "fsm"
	EnginePattern = "pattern"
)

// ValidEngines lists the accepted engine names.
var ValidEngines = []string{EngineFSM, EnginePattern}

// Engine extracts cycles from a complete sequence log.
type Engine interface {
	Extract(text string) (*ir.ExtractionResult, error)
}

// NewEngine returns the engine registered under name.
func NewEngine(name string, topo *topology.Topology) (Engine, error) {
	switch name {
	case EngineFSM, "":
		return New(topo), nil
	case EnginePattern:
		return NewPattern(topo)
	default:
		return nil, fmt.Errorf("unknown engine %q: must be one of %v", name, ValidEngines)
	}
}
