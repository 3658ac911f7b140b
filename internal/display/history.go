package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harrison/mtpget/internal/history"
)

// shortRunID trims a run id to a prefix that is still unique in practice.
func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// RenderHistory writes journalled fetch outcomes as an aligned table.
func RenderHistory(out io.Writer, records []*history.OutcomeRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tID\tSTATUS\tDESTINATION\tERROR")
	for _, rec := range records {
		errText := rec.ErrorMessage
		if errText == "" {
			errText = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortRunID(rec.RunID),
			rec.FileID,
			rec.Status,
			rec.Destination,
			errText,
		)
	}
	return tw.Flush()
}
