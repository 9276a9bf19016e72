package cli

import (
	"errors"
	"log/slog"

	"github.com/roach88/tinv/internal/seqlog"
	"github.com/roach88/tinv/internal/topology"
)

// loadTopology returns the model at path, or the reference model when path
// is empty. Load and validation failures are command errors.
func loadTopology(path string, f *OutputFormatter) (*topology.Topology, error) {
	if path == "" {
		return topology.Default(), nil
	}

	topo, err := topology.LoadCUE(path)
	if err != nil {
		var le *topology.LoadError
		if errors.As(err, &le) && len(le.Invalid) > 0 {
			_ = f.Error(ErrCodeTopology, le.Message, le.Invalid)
			return nil, WrapExitError(ExitCommandError, "invalid topology", err)
		}
		return nil, f.fail(ExitCommandError, ErrCodeTopology, "failed to load topology", err)
	}

	slog.Debug("topology loaded", "path", path, "name", topo.Name, "branches", len(topo.Branches))
	return topo, nil
}

// loadLog reads the sequence log at path. A missing or unreadable log is a
// command error; it is never retried.
func loadLog(path string, f *OutputFormatter) (string, error) {
	text, err := seqlog.Read(path)
	if err != nil {
		if errors.Is(err, seqlog.ErrInvalidUTF8) {
			return "", f.fail(ExitCommandError, ErrCodeInvalidInput, "failed to read log", err)
		}
		return "", f.fail(ExitCommandError, ErrCodeNotFound, "failed to read log", err)
	}

	slog.Debug("log loaded", "path", path, "bytes", len(text))
	return text, nil
}
