package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tinv/internal/topology"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Topology *topology.Topology         `json:"topology,omitempty"`
	Errors   []topology.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [topology-file]",
		Short: "Validate a topology without checking a log",
		Long: `Load a CUE topology and report every structural problem found.

Without an argument the --topology flag (or $TINV_TOPOLOGY) is used; with
neither, the built-in reference model is validated and printed.

Examples:
  tinv validate models/two-way.cue
  tinv validate --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.TopologyPath
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	topo := topology.Default()
	if path != "" {
		t, err := topology.LoadCUE(path)
		if err != nil {
			var le *topology.LoadError
			if errors.As(err, &le) && len(le.Invalid) > 0 {
				return outputValidationErrors(f, le.Invalid)
			}
			return f.fail(ExitCommandError, ErrCodeTopology, "failed to load topology", err)
		}
		topo = t
	}

	if f.JSON() {
		return f.Success(ValidationResult{Valid: true, Topology: topo})
	}

	w := f.Writer
	fmt.Fprintf(w, "✓ Topology %q valid\n", topo.Name)
	fmt.Fprintf(w, "  entry %s, fork %s, exit %s\n", topo.Entry, topo.Fork, topo.Exit)
	for _, b := range topo.Branches {
		fmt.Fprintf(w, "  %s (%s): %v\n", b.Type, b.Key, b.Labels)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(f *OutputFormatter, errs []topology.ValidationError) error {
	if f.JSON() {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}
		if err := f.Failure(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		// Validation failures = exit code 1 (validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)

	for _, err := range errs {
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
