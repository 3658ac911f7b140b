package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/mtpget/internal/display"
	"github.com/harrison/mtpget/internal/history"
	"github.com/harrison/mtpget/internal/logger"
)

// NewHistoryCommand creates the 'mtpget history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch outcomes",
		Long: `Show the most recent fetch outcomes recorded by 'mtpget get',
newest first. Each row names the run, the object id, the outcome and
the destination file.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of outcomes to show (0 = all)")
	cmd.Flags().String("run", "", "Only show outcomes of one run id")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	output := cmd.OutOrStdout()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}
	runID, _ := cmd.Flags().GetString("run")

	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return fmt.Errorf("failed to get history database path: %w", err)
	}

	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(output, "No fetch history recorded.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if version, err := store.GetLatestVersion(); err == nil {
		log.LogDebug(fmt.Sprintf("history database %s (schema version %d)", store.Path(), version))
	}

	var records []*history.OutcomeRecord
	if runID != "" {
		records, err = store.RunOutcomes(cmd.Context(), runID)
	} else {
		records, err = store.RecentOutcomes(cmd.Context(), limit)
	}
	if err != nil {
		return fmt.Errorf("read fetch history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(output, "No fetch history recorded.")
		return nil
	}

	return display.RenderHistory(output, records)
}
