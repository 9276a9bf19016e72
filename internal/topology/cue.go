package topology

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// LoadError is returned when a topology file cannot be loaded.
type LoadError struct {
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Invalid []ValidationError
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadCUE reads a topology from the `topology` field of a CUE file.
// The loaded model is validated; validation failures are reported in
// LoadError.Invalid.
func LoadCUE(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return CompileCUE(path, data)
}

// CompileCUE compiles CUE source into a validated topology.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func CompileCUE(filename string, src []byte) (*Topology, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(filename, err)
	}

	tv := v.LookupPath(cue.ParsePath("topology"))
	if !tv.Exists() {
		return nil, &LoadError{
			Path:    filename,
			Message: "no topology field found",
		}
	}
	if err := tv.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(filename, err)
	}

	var t Topology
	if err := tv.Decode(&t); err != nil {
		return nil, cueError(filename, err)
	}

	if errs := t.Validate(); len(errs) > 0 {
		return nil, &LoadError{
			Path:    filename,
			Message: fmt.Sprintf("invalid topology: %d error(s), first: %s", len(errs), errs[0].Error()),
			Pos:     tv.Pos(),
			Invalid: errs,
		}
	}

	return &t, nil
}

// cueError converts a CUE error into a LoadError carrying the position of
// its first underlying error.
func cueError(path string, err error) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
