package topology

import (
	"fmt"
	"slices"

	"github.com/roach88/tinv/internal/ir"
)

// Branch is one alternative path between fork and exit.
// Labels is an ordered sub-sequence with no repeats.
type Branch struct {
	Type   ir.InvariantType `json:"type"`
	Key    string           `json:"key"`
	Name   string           `json:"name"`
	Labels []ir.Label       `json:"labels"`
}

// First returns the branch's opening label.
func (b Branch) First() ir.Label {
	return b.Labels[0]
}

// Topology is the static process model.
type Topology struct {
	Name     string   `json:"name"`
	Entry    ir.Label `json:"entry"`
	Fork     ir.Label `json:"fork"`
	Exit     ir.Label `json:"exit"`
	Branches []Branch `json:"branches"`
}

// Default returns the reference model: entry T00, fork T01, exit T11 and
// three branches in priority order top, middle, bottom.
func Default() *Topology {
	return &Topology{
		Name:  "reference",
		Entry: "T00",
		Fork:  "T01",
		Exit:  "T11",
		Branches: []Branch{
			{
				Type:   ir.IT1,
				Key:    "top",
				Name:   "IT1: top branch (T02-T03-T04)",
				Labels: []ir.Label{"T02", "T03", "T04"},
			},
			{
				Type:   ir.IT2,
				Key:    "mid",
				Name:   "IT2: middle branch (T05-T06)",
				Labels: []ir.Label{"T05", "T06"},
			},
			{
				Type:   ir.IT3,
				Key:    "bot",
				Name:   "IT3: bottom branch (T07-T08-T09-T10)",
				Labels: []ir.Label{"T07", "T08", "T09", "T10"},
			},
		},
	}
}

// Alphabet returns every label of the model: entry, fork, branch labels in
// declaration order, exit.
func (t *Topology) Alphabet() []ir.Label {
	labels := []ir.Label{t.Entry, t.Fork}
	for _, b := range t.Branches {
		labels = append(labels, b.Labels...)
	}
	return append(labels, t.Exit)
}

// Order returns the invariant types in classification priority.
func (t *Topology) Order() []ir.InvariantType {
	order := make([]ir.InvariantType, len(t.Branches))
	for i, b := range t.Branches {
		order[i] = b.Type
	}
	return order
}

// Branch looks up a branch by invariant type.
func (t *Topology) Branch(it ir.InvariantType) (Branch, bool) {
	i := slices.IndexFunc(t.Branches, func(b Branch) bool { return b.Type == it })
	if i < 0 {
		return Branch{}, false
	}
	return t.Branches[i], true
}

// Contains reports whether the label belongs to the model.
func (t *Topology) Contains(l ir.Label) bool {
	return slices.Contains(t.Alphabet(), l)
}

// BalanceCondition returns the tally condition name for a branch,
// e.g. "branch_top_balanced".
func BalanceCondition(b Branch) string {
	return fmt.Sprintf("branch_%s_balanced", b.Key)
}
