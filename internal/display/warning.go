package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related names or terms (optional)
	ItemLabel  string   // Heading for Items, singular form (default "Item")
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow when colour is enabled
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Items) > 0 {
		label := w.ItemLabel
		if label == "" {
			label = "Item"
		}
		b.WriteString("    ")
		if len(w.Items) == 1 {
			b.WriteString(label + ":\n")
		} else {
			b.WriteString(label + "s:\n")
		}

		for i, item := range w.Items {
			b.WriteString("      ")
			b.WriteString(fmt.Sprintf("%d. %s", i+1, item))
			b.WriteString("\n")
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	// color.NoColor drops the escapes for pipes and NO_COLOR
	fmt.Fprint(out, color.New(color.FgYellow).Sprint(b.String()))
}

// MissingListingWarning tells the user how to produce the snapshot.
func MissingListingWarning(path, captureCommand string) Warning {
	return Warning{
		Title:      "Device listing not found",
		Message:    fmt.Sprintf("No snapshot at %s", path),
		Suggestion: fmt.Sprintf("Capture one first: %s > %s", captureCommand, path),
	}
}

// UnmatchedTermsWarning lists query terms that selected no file.
func UnmatchedTermsWarning(terms []string) Warning {
	return Warning{
		Title:     "Some terms matched nothing",
		Items:     terms,
		ItemLabel: "Unmatched term",
	}
}

// FailedFetchWarning lists the files whose retrieval failed, as "<id> <name>".
func FailedFetchWarning(files []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("%d file(s) could not be fetched", len(files)),
		Items:      files,
		ItemLabel:  "Failed file",
		Suggestion: "Check the device connection and rerun the same query; existing files are skipped",
	}
}
