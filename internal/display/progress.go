package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ProgressIndicator manages multi-step progress display, coloured when colour is enabled
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer:  w,
		total:   total,
		current: 0,
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "Fetching %d file(s):\n", p.total)
}

// Step displays progress for current item: [N/Total] name (cyan)
func (p *ProgressIndicator) Step(name string) {
	p.current++
	fmt.Fprintln(p.writer, color.New(color.FgCyan).Sprintf("  [%d/%d] %s", p.current, p.total, name))
}

// Complete displays success message with green checkmark
func (p *ProgressIndicator) Complete(fetched int) {
	fmt.Fprintf(p.writer, "%s Fetched %d of %d file(s)\n", color.New(color.FgGreen).Sprint("✓"), fetched, p.total)
}
