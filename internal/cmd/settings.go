package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/mtpget/internal/config"
	"github.com/harrison/mtpget/internal/display"
	"github.com/harrison/mtpget/internal/query"
)

// loadSettings loads the config file and applies any flags the user set.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromHome()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var snapshotPtr, destPtr, logLevelPtr *string
	var overwritePtr *bool

	if cmd.Flags().Changed("snapshot") {
		v, _ := cmd.Flags().GetString("snapshot")
		snapshotPtr = &v
	}
	if cmd.Flags().Changed("dest") {
		v, _ := cmd.Flags().GetString("dest")
		destPtr = &v
	}
	if cmd.Flags().Changed("overwrite") {
		v, _ := cmd.Flags().GetBool("overwrite")
		overwritePtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}

	cfg.MergeWithFlags(snapshotPtr, destPtr, overwritePtr, logLevelPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// warnUnmatched reports query terms that selected nothing.
func warnUnmatched(cmd *cobra.Command, res *query.Resolution) {
	if len(res.Unmatched) == 0 {
		return
	}
	display.UnmatchedTermsWarning(res.Unmatched).Display(cmd.ErrOrStderr())
}

// completeTerms offers snapshot names and ids as completions for term arguments.
func completeTerms(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	candidates, err := query.CompleteFile(cfg.SnapshotPath, toComplete)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return candidates, cobra.ShellCompDirectiveNoFileComp
}
