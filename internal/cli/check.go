package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tinv/internal/extract"
	"github.com/roach88/tinv/internal/ir"
	"github.com/roach88/tinv/internal/store"
	"github.com/roach88/tinv/internal/tally"
	"github.com/roach88/tinv/internal/topology"
	"github.com/roach88/tinv/internal/verify"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
	Engine   string

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	LogPath       string     `json:"log_path"`
	OK            bool       `json:"ok"`
	Diverged      bool       `json:"diverged"`
	Failed        []string   `json:"failed,omitempty"`
	StopFeeding   bool       `json:"stop_feeding"`
	DrainComplete bool       `json:"drain_complete"`
	RunID         string     `json:"run_id,omitempty"`
	Report        *ir.Report `json:"report"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [log-file]",
		Short: "Check a sequence log",
		Long: `Run both checks over a recorded sequence log.

The cycle extractor consumes complete cycles (entry, fork, one branch,
exit) and reports per-branch counts and any unconsumed remainder. The
structural tally counts every label and evaluates the balance conditions.
Both results are always printed; neither check hides the other.

The log defaults to $TINV_LOG, else logs/sequence.txt.

Exit codes:
  0 - Remainder empty and tally valid
  1 - Either check failed
  2 - Command error (missing log, invalid topology, etc.)

Examples:
  tinv check
  tinv check run-42.txt --limit 50
  tinv check --engine pattern --format json
  tinv check --db ./runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.Config.LogPath
			if len(args) == 1 {
				path = args[0]
			}
			return runCheck(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "record the run in this SQLite database (env TINV_DB)")
	cmd.Flags().StringVar(&opts.Engine, "engine", rootOpts.Config.Engine, "cycle extraction engine (fsm|pattern) (env TINV_ENGINE)")

	return cmd
}

func runCheck(opts *CheckOptions, logPath string, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if !slices.Contains(extract.ValidEngines, opts.Engine) {
		return f.fail(ExitCommandError, ErrCodeInvalidInput,
			fmt.Sprintf("invalid engine %q: must be one of %v", opts.Engine, extract.ValidEngines), nil)
	}

	topo, err := loadTopology(opts.TopologyPath, f)
	if err != nil {
		return err
	}

	text, err := loadLog(logPath, f)
	if err != nil {
		return err
	}

	rep, err := verify.Run(text, verify.Options{
		Topology: topo,
		Engine:   opts.Engine,
		Limit:    opts.Limit,
	})
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, "check failed to run", err)
	}

	result := CheckResult{
		LogPath:       logPath,
		OK:            rep.OK(),
		Diverged:      rep.Diverged(),
		Failed:        rep.Tally.Failed(),
		StopFeeding:   rep.Tally.StopFeeding(),
		DrainComplete: rep.Tally.DrainComplete(),
		Report:        rep,
	}

	if opts.Database != "" {
		id, err := recordRun(cmdContext(cmd), opts, logPath, rep)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeDatabase, "failed to record run", err)
		}
		result.RunID = id
	}

	slog.Info("check complete",
		"log", logPath,
		"cycles", rep.Extraction.Total,
		"remainder_bytes", len(rep.Extraction.Remainder),
		"tally_valid", rep.Tally.Valid(),
	)

	if f.JSON() {
		if result.OK {
			return f.Success(result)
		}
		if err := f.Failure(result, ErrCodeCheckFailed, checkFailureMessage(rep)); err != nil {
			return err
		}
		return NewExitError(ExitFailure, checkFailureMessage(rep))
	}

	writeCheckText(f.Writer, topo, result)
	if !result.OK {
		return NewExitError(ExitFailure, checkFailureMessage(rep))
	}
	return nil
}

// recordRun writes the report to the history database and returns the run ID.
func recordRun(ctx context.Context, opts *CheckOptions, logPath string, rep *ir.Report) (string, error) {
	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := store.NewRun(gen.Generate(), logPath, rep)
	if err != nil {
		return "", err
	}
	seq, err := st.WriteRun(ctx, run)
	if err != nil {
		return "", err
	}

	slog.Debug("run recorded", "db", opts.Database, "id", run.ID, "seq", seq)
	return run.ID, nil
}

// tallyHint points the operator at what usually explains an invalid tally.
const tallyHint = "inspect counts/timeout/logs"

func checkFailureMessage(rep *ir.Report) string {
	var parts []string
	if !rep.Extraction.Drained() {
		parts = append(parts, "remainder not empty")
	}
	if !rep.Tally.Valid() {
		parts = append(parts, "tally invalid ("+strings.Join(rep.Tally.Failed(), ", ")+"), "+tallyHint)
	}
	return strings.Join(parts, "; ")
}

// writeCheckText renders both check results for humans.
func writeCheckText(w io.Writer, topo *topology.Topology, result CheckResult) {
	rep := result.Report
	ex := rep.Extraction
	ta := rep.Tally

	fmt.Fprintf(w, "Log: %s\n", result.LogPath)
	fmt.Fprintf(w, "Model: %s\n", topo.Name)
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Cycle extraction (%s)\n", ex.Engine)
	fmt.Fprintf(w, "  total cycles: %d\n", ex.Total)
	for _, b := range topo.Branches {
		fmt.Fprintf(w, "  %-40s %d\n", b.Name, ex.Counts[b.Type])
	}
	if ex.Unclassified > 0 {
		fmt.Fprintf(w, "  %-40s %d\n", "unclassified", ex.Unclassified)
	}
	if ex.Drained() {
		fmt.Fprintln(w, "✓ All events consumed")
	} else {
		fmt.Fprintf(w, "✗ Remainder not empty: %q\n", ex.Remainder)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Structural tally (limit %d)\n", ta.Limit)
	fmt.Fprintf(w, "  counts: %s\n", formatCounts(ta))
	shares := tally.Share(ta)
	for i, b := range ta.Branches {
		fmt.Fprintf(w, "  %-40s %d (%d.%d%%)\n", b.Name, b.Count, shares[i]/10, shares[i]%10)
	}
	fmt.Fprintf(w, "  implied total: %d\n", ta.ImpliedTotal())
	fmt.Fprintf(w, "  stop feeding: %s (%s=%d)\n", yesNo(result.StopFeeding), topo.Entry, ta.Entries)
	fmt.Fprintf(w, "  drain complete: %s (%s=%d)\n", yesNo(result.DrainComplete), topo.Exit, ta.Exits)
	for _, c := range ta.Conditions {
		mark := "✓"
		if !c.Holds {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, c.Name)
	}
	if ta.Valid() {
		fmt.Fprintln(w, "✓ Tally valid")
	} else {
		fmt.Fprintf(w, "✗ Tally invalid: %s (%s)\n", strings.Join(ta.Failed(), ", "), tallyHint)
	}

	if result.Diverged {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "! Checks disagree: extraction consumed %d cycle(s), tally implies %d\n",
			ex.Total, ta.ImpliedTotal())
	}
}

func formatCounts(r *ir.TallyResult) string {
	parts := make([]string, len(r.Labels))
	for i, l := range r.Labels {
		parts[i] = fmt.Sprintf("%s=%d", l, r.Counts[l])
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cmdContext returns the command's context, or Background when unset.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
