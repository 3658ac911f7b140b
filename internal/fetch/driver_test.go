package fetch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mtpget/internal/filelock"
	"github.com/harrison/mtpget/internal/logger"
	"github.com/harrison/mtpget/internal/models"
)

// fakeRunner writes the destination file and records every call.
type fakeRunner struct {
	calls  []int64
	failOn map[int64]error
	onCall func(id int64)
}

func (f *fakeRunner) Retrieve(ctx context.Context, id int64, dest string) error {
	f.calls = append(f.calls, id)
	if f.onCall != nil {
		f.onCall(id)
	}
	if err := f.failOn[id]; err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("data"), 0644)
}

type memJournal struct {
	runIDs   []string
	outcomes []models.FetchOutcome
	err      error
}

func (j *memJournal) RecordOutcome(ctx context.Context, runID string, outcome models.FetchOutcome) error {
	j.runIDs = append(j.runIDs, runID)
	j.outcomes = append(j.outcomes, outcome)
	return j.err
}

type countingProgress struct {
	started   bool
	steps     []string
	completed int
}

func (p *countingProgress) Start()               { p.started = true }
func (p *countingProgress) Step(name string)     { p.steps = append(p.steps, name) }
func (p *countingProgress) Complete(fetched int) { p.completed = fetched }

func records(names ...string) []models.FileRecord {
	out := make([]models.FileRecord, len(names))
	for i, name := range names {
		out[i] = models.FileRecord{ID: int64(i + 1), Name: name}
	}
	return out
}

func TestFetch_NothingToFetch(t *testing.T) {
	d := &Driver{Runner: &fakeRunner{}, DestinationDir: t.TempDir()}

	summary, err := d.Fetch(context.Background(), nil)
	assert.Nil(t, summary)
	assert.True(t, errors.Is(err, ErrNothingToFetch))
}

func TestFetch_FetchesEveryRecord(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	journal := &memJournal{}
	progress := &countingProgress{}
	d := &Driver{Runner: runner, DestinationDir: dir, Journal: journal, Progress: progress}

	summary, err := d.Fetch(context.Background(), records("a.jpg", "b.jpg"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, runner.calls)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 0, summary.Failed)
	assert.NotEmpty(t, summary.RunID)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	assert.FileExists(t, filepath.Join(dir, "b.jpg"))

	require.Len(t, journal.outcomes, 2)
	assert.Equal(t, []string{summary.RunID, summary.RunID}, journal.runIDs)

	assert.True(t, progress.started)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, progress.steps)
	assert.Equal(t, 2, progress.completed)
}

func TestFetch_SkipsExistingUnlessOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	t.Run("skip", func(t *testing.T) {
		runner := &fakeRunner{}
		d := &Driver{Runner: runner, DestinationDir: dir}

		summary, err := d.Fetch(context.Background(), records("a.jpg"))
		require.NoError(t, err)
		assert.Empty(t, runner.calls)
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, models.FetchStatusSkipped, summary.Outcomes[0].Status)

		data, _ := os.ReadFile(existing)
		assert.Equal(t, "old", string(data))
	})

	t.Run("overwrite", func(t *testing.T) {
		runner := &fakeRunner{}
		d := &Driver{Runner: runner, DestinationDir: dir, Overwrite: true}

		summary, err := d.Fetch(context.Background(), records("a.jpg"))
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, runner.calls)
		assert.Equal(t, 1, summary.Fetched)

		data, _ := os.ReadFile(existing)
		assert.Equal(t, "data", string(data))
	})
}

func TestFetch_FailureDoesNotStopRun(t *testing.T) {
	runner := &fakeRunner{failOn: map[int64]error{1: &ExitStatusError{Code: 1}}}
	d := &Driver{Runner: runner, DestinationDir: t.TempDir()}

	summary, err := d.Fetch(context.Background(), records("bad.jpg", "good.jpg"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, runner.calls)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Fetched)

	failed := summary.FailedRecords()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad.jpg", failed[0].Name)

	var exitErr *ExitStatusError
	assert.True(t, errors.As(summary.Outcomes[0].Error, &exitErr))
}

func TestFetch_DryRun(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	journal := &memJournal{}
	d := &Driver{Runner: runner, DestinationDir: dir, DryRun: true, Journal: journal}

	summary, err := d.Fetch(context.Background(), records("a.jpg"))
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Empty(t, journal.outcomes)
	assert.Equal(t, 1, summary.Planned)
	assert.NoFileExists(t, filepath.Join(dir, filelock.DirLockName))
}

func TestFetch_DestinationLocked(t *testing.T) {
	dir := t.TempDir()
	lock, err := filelock.LockDir(dir)
	require.NoError(t, err)
	defer lock.Unlock()

	d := &Driver{Runner: &fakeRunner{}, DestinationDir: dir}
	_, err = d.Fetch(context.Background(), records("a.jpg"))
	assert.True(t, errors.Is(err, ErrFetchInProgress))
}

func TestFetch_ContextCancelledStopsBeforeNextRecord(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs bytes.Buffer
	runner := &fakeRunner{onCall: func(int64) { cancel() }}
	d := &Driver{Runner: runner, DestinationDir: t.TempDir(), Logger: logger.NewConsoleLogger(&logs, "error")}

	summary, err := d.Fetch(ctx, records("a.jpg", "b.jpg", "c.jpg"))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, summary)
	assert.Equal(t, []int64{1}, runner.calls)
	assert.Len(t, summary.Outcomes, 1)
	assert.Contains(t, logs.String(), "[ERROR] fetch run "+summary.RunID+" interrupted after 1 of 3 record(s)")
}

func TestFetch_LogsRunAndRecords(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	d := &Driver{Runner: &fakeRunner{}, DestinationDir: dir, Logger: logger.NewConsoleLogger(&logs, "trace")}

	summary, err := d.Fetch(context.Background(), records("a.jpg"))
	require.NoError(t, err)

	output := logs.String()
	assert.Contains(t, output, "[INFO] fetch run "+summary.RunID+": 1 record(s) into "+dir)
	assert.Contains(t, output, "[TRACE] record 1 -> "+filepath.Join(dir, "a.jpg"))
	assert.Contains(t, output, "Fetched: 1")
}

func TestFetch_JournalErrorIsNotFatal(t *testing.T) {
	journal := &memJournal{err: errors.New("disk full")}
	d := &Driver{Runner: &fakeRunner{}, DestinationDir: t.TempDir(), Journal: journal}

	summary, err := d.Fetch(context.Background(), records("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fetched)
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		rec  models.FileRecord
		want string
	}{
		{models.FileRecord{ID: 1, Name: "photo.jpg"}, "photo.jpg"},
		{models.FileRecord{ID: 2, Name: ""}, "2"},
		{models.FileRecord{ID: 3, Name: ".."}, "3"},
		{models.FileRecord{ID: 4, Name: "a/b.txt"}, "a_b.txt"},
		{models.FileRecord{ID: 5, Name: "my file.txt"}, "my file.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeName(tt.rec))
	}
}
