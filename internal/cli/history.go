package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tinv/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Digest   string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs",
		Long: `List runs recorded by "tinv check --db", oldest first.

Runs of byte-identical logs share a digest; --digest narrows the listing to
one log.

Examples:
  tinv history --db ./runs.db
  tinv history --db ./runs.db --digest 3f2a... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "path to SQLite database (env TINV_DB)")
	cmd.Flags().StringVar(&opts.Digest, "digest", "", "only runs of the log with this digest")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if opts.Database == "" {
		return f.fail(ExitCommandError, ErrCodeInvalidInput, "--db is required", nil)
	}
	// Opening would create an empty database; a missing file is a typo.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return f.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	var runs []store.Run
	if opts.Digest != "" {
		runs, err = st.RunsForDigest(ctx, opts.Digest)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeDatabase, "failed to read runs", err)
	}

	if f.JSON() {
		return f.Success(HistoryResult{Runs: runs})
	}

	w := f.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-4s %-36s %-7s %6s %6s %-8s %s\n", "SEQ", "ID", "ENGINE", "LIMIT", "CYCLES", "RESULT", "LOG")
	for _, r := range runs {
		status := "ok"
		switch {
		case !r.OK && r.Remainder != "" && !r.TallyValid:
			status = "both"
		case r.Remainder != "":
			status = "residue"
		case !r.TallyValid:
			status = "tally"
		}
		fmt.Fprintf(w, "%-4d %-36s %-7s %6d %6d %-8s %s\n", r.Seq, r.ID, r.Engine, r.Limit, r.Total, status, r.LogPath)
	}
	return nil
}
