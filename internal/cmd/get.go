package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/mtpget/internal/config"
	"github.com/harrison/mtpget/internal/display"
	"github.com/harrison/mtpget/internal/fetch"
	"github.com/harrison/mtpget/internal/history"
	"github.com/harrison/mtpget/internal/logger"
	"github.com/harrison/mtpget/internal/query"
)

// NewGetCommand creates the 'mtpget get' command
func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [term...]",
		Short: "Fetch snapshot files matching the given terms",
		Long: `Resolve the terms against the device snapshot and run the retrieval
command once per matching file. Terms work as in 'mtpget list'; with no
terms every file in the listing is fetched.

Existing local files are skipped unless --overwrite is given. A failed
retrieval is reported and the remaining files are still fetched.

Exit codes:
  0  every file was fetched or skipped
  1  at least one retrieval failed, or another error occurred
  2  the device listing does not exist
  3  nothing matched`,
		RunE:              runGet,
		ValidArgsFunction: completeTerms,
	}

	cmd.Flags().Bool("overwrite", false, "Replace existing local files")
	cmd.Flags().StringP("dest", "d", "", "Destination directory (default: current directory)")
	cmd.Flags().BoolP("dry-run", "n", false, "Show what would be fetched without running the retrieval command")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	res, err := query.Lookup(cfg.SnapshotPath, args)
	if err != nil {
		return lookupError(cmd, cfg, err)
	}
	warnUnmatched(cmd, res)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	stderr := cmd.ErrOrStderr()
	log := logger.NewConsoleLogger(stderr, cfg.LogLevel)

	runner, err := fetch.NewShellRunner(cfg.RetrieveCommand)
	if err != nil {
		return err
	}
	runner.Timeout = cfg.FetchTimeout
	runner.Stderr = stderr
	log.LogDebug(fmt.Sprintf("retrieve command: %s", runner.Command()))

	driver := &fetch.Driver{
		Runner:         runner,
		DestinationDir: cfg.DestinationDir,
		Overwrite:      cfg.Overwrite,
		DryRun:         dryRun,
		Logger:         log,
	}

	if cfg.History.Enabled && !dryRun {
		if store := openJournal(cfg, log); store != nil {
			defer store.Close()
			driver.Journal = store
		}
	}

	if isTerminal(stderr) {
		driver.Progress = display.NewProgressIndicator(stderr, len(res.Records))
	}

	summary, err := driver.Fetch(cmd.Context(), res.Records)
	switch {
	case errors.Is(err, fetch.ErrNothingToFetch):
		return &ExitError{Code: ExitNothingToFetch, Err: err}
	case err != nil:
		return err
	}

	if dryRun {
		out := cmd.OutOrStdout()
		for _, outcome := range summary.Outcomes {
			fmt.Fprintf(out, "%s\t%s\n", outcome.Status, outcome.Destination)
		}
		return nil
	}

	if summary.Failed > 0 {
		var failed []string
		for _, rec := range summary.FailedRecords() {
			failed = append(failed, fmt.Sprintf("%d %s", rec.ID, rec.LocalName()))
		}
		display.FailedFetchWarning(failed).Display(stderr)
		return &ExitError{
			Code: ExitFailure,
			Err:  fmt.Errorf("%d of %d file(s) failed", summary.Failed, len(summary.Outcomes)),
		}
	}

	return nil
}

// openJournal opens the history store. Journalling is best effort, so a
// store that cannot be opened only produces a warning.
func openJournal(cfg *config.Config, log logger.Logger) *history.Store {
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		log.LogWarn(fmt.Sprintf("fetch history disabled: %v", err))
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("fetch history disabled: %v", err))
		return nil
	}
	log.LogDebug(fmt.Sprintf("journalling fetch outcomes to %s", store.Path()))
	return store
}
