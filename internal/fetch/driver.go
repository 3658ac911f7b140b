// Package fetch retrieves resolved records from the device by running the
// configured retrieval command once per record.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/mtpget/internal/filelock"
	"github.com/harrison/mtpget/internal/logger"
	"github.com/harrison/mtpget/internal/models"
)

var (
	// ErrNothingToFetch is returned when resolution selected no records.
	ErrNothingToFetch = errors.New("nothing to fetch")

	// ErrFetchInProgress is matched when another run holds the destination lock.
	ErrFetchInProgress = filelock.ErrLocked
)

// Journal records fetch outcomes.
type Journal interface {
	RecordOutcome(ctx context.Context, runID string, outcome models.FetchOutcome) error
}

// Progress receives one step per record.
type Progress interface {
	Start()
	Step(name string)
	Complete(fetched int)
}

// Driver fetches records sequentially. A failed record does not stop the
// run; its outcome is recorded and the next record is attempted.
type Driver struct {
	Runner         Runner
	DestinationDir string
	Overwrite      bool
	DryRun         bool

	// Logger, Journal and Progress are optional
	Logger   logger.Logger
	Journal  Journal
	Progress Progress
}

// Fetch retrieves every record into DestinationDir.
//
// Returns ErrNothingToFetch for an empty record list and ErrFetchInProgress
// when another process is fetching into the same directory. Individual
// failures are reported through the summary, not the error. A cancelled
// context stops the run before the next record and returns the partial
// summary with the context error.
func (d *Driver) Fetch(ctx context.Context, records []models.FileRecord) (*models.FetchSummary, error) {
	if len(records) == 0 {
		return nil, ErrNothingToFetch
	}

	log := d.activeLogger()

	destDir := d.DestinationDir
	if destDir == "" {
		destDir = "."
	}

	if !d.DryRun {
		lock, err := filelock.LockDir(destDir)
		if err != nil {
			return nil, err
		}
		defer lock.Unlock()
	}

	summary := &models.FetchSummary{RunID: uuid.New().String()}
	log.LogInfo(fmt.Sprintf("fetch run %s: %d record(s) into %s", summary.RunID, len(records), destDir))

	start := time.Now()
	if d.Progress != nil {
		d.Progress.Start()
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			log.LogError(fmt.Sprintf("fetch run %s interrupted after %d of %d record(s): %v",
				summary.RunID, len(summary.Outcomes), len(records), err))
			return summary, err
		}

		if d.Progress != nil {
			d.Progress.Step(rec.LocalName())
		}

		outcome := d.fetchOne(ctx, rec, destDir)
		summary.Add(outcome)
		log.LogFetchOutcome(outcome)

		if d.Journal != nil && !d.DryRun {
			if err := d.Journal.RecordOutcome(ctx, summary.RunID, outcome); err != nil {
				log.LogWarn(fmt.Sprintf("failed to record outcome for %d: %v", rec.ID, err))
			}
		}
	}

	summary.Duration = time.Since(start)
	if d.Progress != nil {
		d.Progress.Complete(summary.Fetched)
	}
	log.LogFetchSummary(summary)

	return summary, nil
}

func (d *Driver) fetchOne(ctx context.Context, rec models.FileRecord, destDir string) models.FetchOutcome {
	dest := filepath.Join(destDir, safeName(rec))
	outcome := models.FetchOutcome{Record: rec, Destination: dest}
	d.activeLogger().LogTrace(fmt.Sprintf("record %d -> %s", rec.ID, dest))

	if !d.Overwrite {
		_, err := os.Stat(dest)
		switch {
		case err == nil:
			outcome.Status = models.FetchStatusSkipped
			return outcome
		case !errors.Is(err, fs.ErrNotExist):
			outcome.Status = models.FetchStatusFailed
			outcome.Error = fmt.Errorf("failed to check %s: %w", dest, err)
			return outcome
		}
	}

	if d.DryRun {
		outcome.Status = models.FetchStatusPlanned
		return outcome
	}

	started := time.Now()
	err := d.Runner.Retrieve(ctx, rec.ID, dest)
	outcome.Duration = time.Since(started)
	if err != nil {
		outcome.Status = models.FetchStatusFailed
		outcome.Error = err
		return outcome
	}

	outcome.Status = models.FetchStatusFetched
	return outcome
}

// safeName returns a single path component for rec, so device names cannot
// escape the destination directory.
func safeName(rec models.FileRecord) string {
	name := rec.LocalName()
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "." || name == ".." {
		return fmt.Sprintf("%d", rec.ID)
	}
	return name
}

func (d *Driver) activeLogger() logger.Logger {
	if d.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return d.Logger
}
