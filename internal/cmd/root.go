package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for mtpget
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mtpget",
		Short: "Query and fetch files from an MTP device snapshot",
		Long: `mtpget answers queries against a captured MTP device listing and
fetches the matching files with a configurable retrieval command.

Capture the listing once (mtp-files > mtp-files.txt), then select files
by exact name, numeric object id or wildcard pattern:

  mtpget list 'IMG_*.jpg'
  mtpget get 1042 notes.txt`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main reports errors so exit codes stay in one place
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("snapshot", "", "Path to the device listing (default: mtp-files.txt)")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: $MTPGET_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewGetCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
