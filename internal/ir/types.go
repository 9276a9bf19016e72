package ir

import "slices"

// Label is a transition label from the recorded alphabet, e.g. "T00".
type Label string

// InvariantType names the transition invariant a cycle belongs to.
type InvariantType string

// Invariant types of the reference process model.
const (
	IT1 InvariantType = "IT1" // top branch
	IT2 InvariantType = "IT2" // middle branch
	IT3 InvariantType = "IT3" // bottom branch
)

// Token is one label occurrence in the raw log text.
// Start and End are byte offsets, End exclusive.
type Token struct {
	Label Label `json:"label"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

// Cycle is a consumed span of the log, from the start of its entry label
// through the end of its exit label. Type is empty when no strict branch
// template matched the span.
type Cycle struct {
	Start int           `json:"start"`
	End   int           `json:"end"`
	Type  InvariantType `json:"type,omitempty"`
}

// Classified reports whether the cycle was attributed to a branch.
func (c Cycle) Classified() bool {
	return c.Type != ""
}

// ExtractionResult is the outcome of sequential cycle extraction.
type ExtractionResult struct {
	// Engine names the extractor that produced the result ("fsm" or "pattern").
	Engine string `json:"engine"`

	// Total counts every consumed cycle, classified or not.
	Total int `json:"total"`

	// Counts holds per-branch tallies keyed by invariant type.
	Counts map[InvariantType]int `json:"counts"`

	// Order lists invariant types in classification priority.
	Order []InvariantType `json:"-"`

	// Unclassified counts cycles no strict template matched.
	Unclassified int `json:"unclassified"`

	// Remainder is the whitespace-trimmed text left unconsumed.
	Remainder string `json:"remainder"`

	// Cycles lists consumed spans in log order. Engines that do not track
	// positions in the original text leave it empty.
	Cycles []Cycle `json:"cycles,omitempty"`
}

// NewExtractionResult creates an empty result with a zero count for every
// invariant type in order.
func NewExtractionResult(engine string, order []InvariantType) *ExtractionResult {
	counts := make(map[InvariantType]int, len(order))
	for _, it := range order {
		counts[it] = 0
	}
	return &ExtractionResult{
		Engine: engine,
		Counts: counts,
		Order:  slices.Clone(order),
	}
}

// Record adds a consumed cycle to the result.
func (r *ExtractionResult) Record(c Cycle) {
	r.Count(c.Type)
	r.Cycles = append(r.Cycles, c)
}

// Count tallies a consumed cycle of the given type without recording its
// position. An empty type counts as unclassified.
func (r *ExtractionResult) Count(typ InvariantType) {
	r.Total++
	if typ == "" {
		r.Unclassified++
		return
	}
	r.Counts[typ]++
}

// Drained reports whether every event of the log was consumed by some cycle.
func (r *ExtractionResult) Drained() bool {
	return r.Remainder == ""
}

// ClassifiedTotal returns the sum of the per-branch counts.
// It is lower than Total exactly when some cycle was unclassified.
func (r *ExtractionResult) ClassifiedTotal() int {
	sum := 0
	for _, n := range r.Counts {
		sum += n
	}
	return sum
}

// Condition is one named balance check of the structural tally.
type Condition struct {
	Name  string `json:"name"`
	Holds bool   `json:"holds"`
}

// BranchTally holds the structural counts of one branch.
type BranchTally struct {
	Type InvariantType `json:"type"`
	Name string        `json:"name"`

	// Count is the count of the branch's first label. It equals the number
	// of cycles through the branch only when Balanced holds.
	Count    int  `json:"count"`
	Balanced bool `json:"balanced"`
}

// TallyResult is the outcome of the structural tally validation.
type TallyResult struct {
	// Counts maps every label seen (and every label of the model) to its
	// number of occurrences.
	Counts map[Label]int `json:"counts"`

	// Labels lists Counts keys in report order: model alphabet first,
	// then any foreign labels in lexical order.
	Labels []Label `json:"-"`

	Branches []BranchTally `json:"branches"`
	Entries  int           `json:"entries"`
	Exits    int           `json:"exits"`
	Limit    int           `json:"limit"`

	// Conditions lists every balance check in report order.
	Conditions []Condition `json:"conditions"`
}

// ImpliedTotal returns the cycle count implied by the branch tallies (n1+n2+n3).
func (r *TallyResult) ImpliedTotal() int {
	sum := 0
	for _, b := range r.Branches {
		sum += b.Count
	}
	return sum
}

// Valid reports whether every condition holds.
func (r *TallyResult) Valid() bool {
	for _, c := range r.Conditions {
		if !c.Holds {
			return false
		}
	}
	return true
}

// Failed returns the names of the conditions that do not hold.
func (r *TallyResult) Failed() []string {
	var names []string
	for _, c := range r.Conditions {
		if !c.Holds {
			names = append(names, c.Name)
		}
	}
	return names
}

// Condition looks up a condition by name.
func (r *TallyResult) Condition(name string) (Condition, bool) {
	for _, c := range r.Conditions {
		if c.Name == name {
			return c, true
		}
	}
	return Condition{}, false
}

// StopFeeding reports whether entries reached the configured limit.
func (r *TallyResult) StopFeeding() bool {
	return r.Entries >= r.Limit
}

// DrainComplete reports whether exits reached the configured limit.
func (r *TallyResult) DrainComplete() bool {
	return r.Exits >= r.Limit
}

// Report combines both independent checks of one log. The two results are
// never merged: a discrepancy between them is itself diagnostic.
type Report struct {
	LogDigest  string            `json:"log_digest"`
	Extraction *ExtractionResult `json:"extraction"`
	Tally      *TallyResult      `json:"tally"`
}

// OK reports whether the log passed both checks.
func (r *Report) OK() bool {
	return r.Extraction.Drained() && r.Tally.Valid()
}

// Diverged reports whether the two checks disagree on the cycle count.
func (r *Report) Diverged() bool {
	return r.Extraction.Total != r.Tally.ImpliedTotal()
}
