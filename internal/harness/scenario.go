package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tinv/internal/extract"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Log is the inline log text. Exactly one of Log, LogFile and Generate
	// must be set.
	Log string `yaml:"log,omitempty"`

	// LogFile is a path to a sequence log, relative to the scenario file.
	LogFile string `yaml:"log_file,omitempty"`

	// Generate requests a synthetic well-formed log.
	Generate *GenerateClause `yaml:"generate,omitempty"`

	// Topology is an optional CUE model file, relative to the scenario file.
	// If empty, the reference model is used.
	Topology string `yaml:"topology,omitempty"`

	// Limit overrides the expected cycle count. Zero means the default.
	Limit int `yaml:"limit,omitempty"`

	// Engine selects the cycle extractor ("fsm" or "pattern").
	Engine string `yaml:"engine,omitempty"`

	// Expect lists the outcomes to check.
	Expect Expect `yaml:"expect"`
}

// GenerateClause describes a synthetic log.
type GenerateClause struct {
	Cycles int      `yaml:"cycles"`
	Seed   uint64   `yaml:"seed"`
	Noise  bool     `yaml:"noise,omitempty"`
	Plan   []string `yaml:"plan,omitempty"` // invariant types, one per cycle
}

// Expect holds the expected outcome of both checks.
type Expect struct {
	// OK is the expected combined verdict.
	OK *bool `yaml:"ok,omitempty"`

	Extract *ExtractExpect `yaml:"extract,omitempty"`
	Tally   *TallyExpect   `yaml:"tally,omitempty"`
}

// ExtractExpect is a subset match over the extraction result.
type ExtractExpect struct {
	Total        *int           `yaml:"total,omitempty"`
	Counts       map[string]int `yaml:"counts,omitempty"`
	Unclassified *int           `yaml:"unclassified,omitempty"`
	Remainder    *string        `yaml:"remainder,omitempty"`
}

// TallyExpect is a subset match over the tally result.
type TallyExpect struct {
	Valid        *bool           `yaml:"valid,omitempty"`
	Conditions   map[string]bool `yaml:"conditions,omitempty"`
	ImpliedTotal *int            `yaml:"implied_total,omitempty"`
	Counts       map[string]int  `yaml:"counts,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Relative paths inside the scenario resolve against the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving log_file and topology paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.LogFile = resolve(basePath, scenario.LogFile)
	scenario.Topology = resolve(basePath, scenario.Topology)

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func resolve(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) || basePath == "" {
		return p
	}
	return filepath.Join(basePath, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	sources := 0
	if s.Log != "" {
		sources++
	}
	if s.LogFile != "" {
		sources++
	}
	if s.Generate != nil {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of log, log_file or generate is required")
	}

	if s.LogFile != "" {
		if _, err := os.Stat(s.LogFile); os.IsNotExist(err) {
			return fmt.Errorf("log file not found: %s", s.LogFile)
		}
	}

	if s.Topology != "" {
		if _, err := os.Stat(s.Topology); os.IsNotExist(err) {
			return fmt.Errorf("topology file not found: %s", s.Topology)
		}
	}

	if s.Generate != nil && s.Generate.Cycles < 0 {
		return fmt.Errorf("generate.cycles must be non-negative")
	}

	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}

	if s.Engine != "" && !slices.Contains(extract.ValidEngines, s.Engine) {
		return fmt.Errorf("unknown engine %q (valid: %v)", s.Engine, extract.ValidEngines)
	}

	if s.Expect.OK == nil && s.Expect.Extract == nil && s.Expect.Tally == nil {
		return fmt.Errorf("expect must name at least one of ok, extract or tally")
	}

	return nil
}
