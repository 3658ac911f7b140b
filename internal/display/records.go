package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/harrison/mtpget/internal/query"
)

// RenderSimple writes one name per line.
func RenderSimple(out io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}

// RenderDetailed writes an aligned ID/SIZE/PARENT/NAME table.
// The name column is last so names containing spaces stay readable.
func RenderDetailed(out io.Writer, rows []query.Row) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tPARENT\tNAME")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.ID, row.Size, row.ParentID, row.Name)
	}
	return tw.Flush()
}
