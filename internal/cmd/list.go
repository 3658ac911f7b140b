package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/mtpget/internal/display"
	"github.com/harrison/mtpget/internal/filelock"
	"github.com/harrison/mtpget/internal/query"
)

// NewListCommand creates the 'mtpget list' command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [term...]",
		Short: "List snapshot files matching the given terms",
		Long: `List files from the device snapshot.

Each term is one of:
  - an exact file name (photo.jpg)
  - a numeric object id (1042)
  - a wildcard pattern matched against the whole name ('IMG_*.jpg', 'a?c', '[ab]*')

With no terms the whole listing is printed, ordered by name.`,
		RunE:              runList,
		ValidArgsFunction: completeTerms,
	}

	cmd.Flags().BoolP("detailed", "l", false, "Show id, size and parent id for each file")
	cmd.Flags().StringP("output", "o", "", "Write the listing to a file instead of stdout")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	res, err := query.Lookup(cfg.SnapshotPath, args)
	if err != nil {
		return lookupError(cmd, cfg, err)
	}
	warnUnmatched(cmd, res)

	detailed, _ := cmd.Flags().GetBool("detailed")
	outputPath, _ := cmd.Flags().GetString("output")

	var buf bytes.Buffer
	if detailed {
		err = display.RenderDetailed(&buf, query.Detailed(res.Records))
	} else {
		err = display.RenderSimple(&buf, query.Simple(res.Records))
	}
	if err != nil {
		return fmt.Errorf("render listing: %w", err)
	}

	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := filelock.AtomicWrite(outputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d file(s) to %s\n", len(res.Records), outputPath)
	return nil
}
