package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mtpget/internal/config"
	"github.com/harrison/mtpget/internal/listing"
)

const phoneSnapshot = `File ID: 1
  Filename: notes.txt
  File size 12
File ID: 2
  Filename: photo.jpg
  File size 2048
  Parent ID: 1
File ID: 3
  Filename: photo.jpg
`

type testEnv struct {
	dir      string
	snapshot string
	config   string
	destDir  string
	dbPath   string
}

// newTestEnv writes a snapshot and a config whose retrieval command is run
// by the embedded shell, so no device tools are needed.
func newTestEnv(t *testing.T, retrieveCommand string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(config.HomeEnv, filepath.Join(dir, "home"))

	env := &testEnv{
		dir:      dir,
		snapshot: filepath.Join(dir, "mtp-files.txt"),
		config:   filepath.Join(dir, "config.yaml"),
		destDir:  filepath.Join(dir, "out"),
		dbPath:   filepath.Join(dir, "history.db"),
	}
	require.NoError(t, os.WriteFile(env.snapshot, []byte(phoneSnapshot), 0644))

	cfg := fmt.Sprintf(`snapshot_path: %s
retrieve_command: '%s'
destination_dir: %s
history:
  db_path: %s
`, env.snapshot, retrieveCommand, env.destDir, env.dbPath)
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0644))

	return env
}

func (e *testEnv) run(args ...string) (string, string, error) {
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.config}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestListCommand_FullListing(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, stderr, err := env.run("list")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt\nphoto.jpg\nphoto.jpg\n", stdout)
	assert.Empty(t, stderr)
}

func TestListCommand_Detailed(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, _, err := env.run("list", "--detailed", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "SIZE", "PARENT", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2", "2048", "1", "photo.jpg"}, strings.Fields(lines[1]))
}

func TestListCommand_WildcardAndNumericTerms(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	firstColumn := func(stdout string) []string {
		lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
		var ids []string
		for _, line := range lines[1:] {
			ids = append(ids, strings.Fields(line)[0])
		}
		return ids
	}

	// A numeric term is emitted on the first name visited, before the
	// wildcard gets to match that name.
	stdout, _, err := env.run("list", "-l", "3", "*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, firstColumn(stdout))

	// With the wildcard first, notes.txt is matched before the id is reached.
	stdout, _, err = env.run("list", "-l", "*.txt", "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, firstColumn(stdout))
}

func TestListCommand_OutputFile(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	outPath := filepath.Join(env.dir, "listing.txt")

	stdout, stderr, err := env.run("list", "--output", outPath, "photo.jpg")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Wrote 2 file(s)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg\nphoto.jpg\n", string(data))
}

func TestListCommand_UnmatchedTermWarns(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, stderr, err := env.run("list", "notes.txt", "missing.png")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt\n", stdout)
	assert.Contains(t, stderr, "matched nothing")
	assert.Contains(t, stderr, "missing.png")
}

func TestListCommand_MissingSnapshot(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	missing := filepath.Join(env.dir, "absent.txt")

	stdout, stderr, err := env.run("--snapshot", missing, "list", "anything")
	require.Error(t, err)
	assert.Equal(t, ExitMissingListing, ExitCode(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "mtp-files > "+missing)
}

func TestListCommand_InvalidPattern(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, _, err := env.run("list", "[unclosed")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestListCommand_CorruptSnapshot(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	require.NoError(t, os.WriteFile(env.snapshot, []byte("File ID: 99999999999999999999\n"), 0644))

	_, _, err := env.run("list")
	require.Error(t, err)

	var syntaxErr *listing.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestGetCommand_FetchesAndJournals(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, stderr, err := env.run("get", "notes.txt")
	require.NoError(t, err, stderr)

	data, err := os.ReadFile(filepath.Join(env.destDir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(data))
	assert.Contains(t, stderr, "Fetched: 1")
	assert.FileExists(t, env.dbPath)

	stdout, _, err := env.run("history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fetched")
	assert.Contains(t, stdout, filepath.Join(env.destDir, "notes.txt"))
}

func TestGetCommand_SkipsExistingUnlessOverwrite(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	require.NoError(t, os.MkdirAll(env.destDir, 0755))
	dest := filepath.Join(env.destDir, "notes.txt")
	require.NoError(t, os.WriteFile(dest, []byte("local"), 0644))

	_, stderr, err := env.run("get", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipped: 1")
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "local", string(data))

	_, _, err = env.run("get", "--overwrite", "1")
	require.NoError(t, err)
	data, _ = os.ReadFile(dest)
	assert.Equal(t, "1\n", string(data))
}

func TestGetCommand_DestFlag(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	other := filepath.Join(env.dir, "elsewhere")

	_, _, err := env.run("get", "--dest", other, "notes.txt")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(env.destDir, "notes.txt"))
}

func TestGetCommand_FailureContinues(t *testing.T) {
	env := newTestEnv(t, `test "$1" != 2 && echo "$1" > "$2"`)

	_, stderr, err := env.run("get", "2", "notes.txt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")
	assert.Contains(t, stderr, "could not be fetched")
	assert.Contains(t, stderr, "1. 2 photo.jpg")
	assert.FileExists(t, filepath.Join(env.destDir, "notes.txt"))
	assert.NoFileExists(t, filepath.Join(env.destDir, "photo.jpg"))
}

func TestGetCommand_NothingToFetch(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, stderr, err := env.run("get", "nope.png")
	require.Error(t, err)
	assert.Equal(t, ExitNothingToFetch, ExitCode(err))
	assert.Contains(t, stderr, "nope.png")
}

func TestGetCommand_DryRun(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, _, err := env.run("get", "--dry-run", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "planned\t"+filepath.Join(env.destDir, "notes.txt")+"\n", stdout)
	assert.NoFileExists(t, filepath.Join(env.destDir, "notes.txt"))
	assert.NoFileExists(t, env.dbPath)
}

func TestGetCommand_MissingSnapshot(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)
	require.NoError(t, os.Remove(env.snapshot))

	_, stderr, err := env.run("get", "notes.txt")
	assert.Equal(t, ExitMissingListing, ExitCode(err))
	assert.Contains(t, stderr, "Device listing not found")
}

func TestHistoryCommand_Empty(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, _, err := env.run("history")
	require.NoError(t, err)
	assert.Equal(t, "No fetch history recorded.\n", stdout)
}

func TestHistoryCommand_Limit(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, _, err := env.run("get")
	require.NoError(t, err)

	stdout, _, err := env.run("history", "--limit", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	assert.Len(t, lines, 2)

	_, _, err = env.run("history", "--limit", "-1")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, _, err := env.run("--log-level", "loud", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	stdout, _, err := env.run("__complete", "list", "ph")
	require.NoError(t, err)
	assert.Contains(t, stdout, "photo.jpg")
	assert.NotContains(t, stdout, "notes.txt")
}

func TestDebugLogging(t *testing.T) {
	env := newTestEnv(t, `echo "$1" > "$2"`)

	_, stderr, err := env.run("--log-level", "DEBUG", "get", "notes.txt")
	require.NoError(t, err)
	assert.Contains(t, stderr, `retrieve command: echo "$1" > "$2"`)
	assert.Contains(t, stderr, "journalling fetch outcomes to "+env.dbPath)

	_, stderr, err = env.run("--log-level", "debug", "history")
	require.NoError(t, err)
	assert.Contains(t, stderr, "schema version 2")
}
