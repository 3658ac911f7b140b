// Package display provides terminal output for query results, fetch progress and warnings.
//
// # Query Results
//
// The simple view prints one name per line; the detailed view prints an
// aligned table:
//
//	display.RenderSimple(os.Stdout, query.Simple(res.Records))
//	display.RenderDetailed(os.Stdout, query.Detailed(res.Records))
//
// # Progress Indicators
//
// ProgressIndicator reports a fetch run record by record:
//
//	progress := display.NewProgressIndicator(os.Stdout, len(records))
//	progress.Start()
//	for _, rec := range records {
//	    progress.Step(rec.Name)
//	    // ... fetch ...
//	}
//	progress.Complete(fetched)
//
// # Warning Messages
//
// Warnings are yellow blocks with an optional message, item list and
// suggestion:
//
//	display.MissingListingWarning("mtp-files.txt", "mtp-files").Display(os.Stderr)
//	display.UnmatchedTermsWarning([]string{"*.mov"}).Display(os.Stderr)
//
// All functions accept io.Writer for testability.
package display
