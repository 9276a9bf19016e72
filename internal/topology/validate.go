package topology

import (
	"fmt"
	"regexp"

	"github.com/roach88/tinv/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrMissingAnchor      = "E101" // entry, fork or exit label missing
	ErrNoBranches         = "E102" // at least one branch required
	ErrEmptyBranch        = "E103" // branch must have labels
	ErrInvalidLabel       = "E104" // label must be "T" followed by two digits
	ErrDuplicateLabel     = "E105" // label used twice in the model
	ErrDuplicateBranch    = "E106" // branch type or key used twice
	ErrMissingBranchField = "E107" // branch type or key missing
)

var labelFormat = regexp.MustCompile(`^T\d{2}$`)

// ValidationError represents a topology validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the model for structural problems.
// Returns all errors found (does not fail-fast).
func (t *Topology) Validate() []ValidationError {
	var errs []ValidationError
	seen := make(map[ir.Label]string)

	checkLabel := func(field string, l ir.Label) {
		if !labelFormat.MatchString(string(l)) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid label %q: must be T followed by two digits", l),
				Code:    ErrInvalidLabel,
			})
			return
		}
		if prev, ok := seen[l]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("label %s already used by %s", l, prev),
				Code:    ErrDuplicateLabel,
			})
			return
		}
		seen[l] = field
	}

	anchors := []struct {
		field string
		label ir.Label
	}{
		{"entry", t.Entry},
		{"fork", t.Fork},
		{"exit", t.Exit},
	}
	for _, a := range anchors {
		if a.label == "" {
			errs = append(errs, ValidationError{
				Field:   a.field,
				Message: a.field + " label is required",
				Code:    ErrMissingAnchor,
			})
			continue
		}
		checkLabel(a.field, a.label)
	}

	if len(t.Branches) == 0 {
		errs = append(errs, ValidationError{
			Field:   "branches",
			Message: "at least one branch is required",
			Code:    ErrNoBranches,
		})
	}

	types := make(map[ir.InvariantType]bool)
	keys := make(map[string]bool)
	for i, b := range t.Branches {
		field := fmt.Sprintf("branches[%d]", i)

		if b.Type == "" || b.Key == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "branch type and key are required",
				Code:    ErrMissingBranchField,
			})
		}
		if b.Type != "" {
			if types[b.Type] {
				errs = append(errs, ValidationError{
					Field:   field + ".type",
					Message: fmt.Sprintf("duplicate branch type %s", b.Type),
					Code:    ErrDuplicateBranch,
				})
			}
			types[b.Type] = true
		}
		if b.Key != "" {
			if keys[b.Key] {
				errs = append(errs, ValidationError{
					Field:   field + ".key",
					Message: fmt.Sprintf("duplicate branch key %q", b.Key),
					Code:    ErrDuplicateBranch,
				})
			}
			keys[b.Key] = true
		}

		if len(b.Labels) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".labels",
				Message: "branch must have at least one label",
				Code:    ErrEmptyBranch,
			})
			continue
		}
		for j, l := range b.Labels {
			checkLabel(fmt.Sprintf("%s.labels[%d]", field, j), l)
		}
	}

	return errs
}
