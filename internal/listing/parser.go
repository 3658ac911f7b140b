package listing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/harrison/mtpget/internal/models"
)

// maxLineLength bounds a single snapshot line.
const maxLineLength = 1024 * 1024

var (
	// fileIDPattern starts a new record and must be unindented
	fileIDPattern = regexp.MustCompile(`^File ID: (\d+)\s*$`)
	// field patterns require leading whitespace
	filenamePattern = regexp.MustCompile(`^\s+Filename: (.*)$`)
	fileSizePattern = regexp.MustCompile(`^\s+File size (\d+)`)
	parentIDPattern = regexp.MustCompile(`^\s+Parent ID: (\d+)`)
)

// parseState is the parser's position relative to records.
type parseState int

const (
	// outsideRecord: no "File ID:" line seen yet
	outsideRecord parseState = iota
	// inRecord: field lines apply to the current record
	inRecord
)

// builder accumulates records during a single forward pass.
type builder struct {
	index   *Index
	state   parseState
	current models.FileRecord
}

func newBuilder() *builder {
	return &builder{index: newIndex(), state: outsideRecord}
}

// begin starts a new record, flushing the one in progress.
func (b *builder) begin(id int64) {
	b.flush()
	b.current = models.FileRecord{ID: id}
	b.state = inRecord
}

// flush moves the record in progress into the index.
func (b *builder) flush() {
	if b.state != inRecord {
		return
	}
	b.index.add(b.current)
	b.current = models.FileRecord{}
	b.state = outsideRecord
}

// line dispatches one snapshot line. lineNo is 1-based and only used for errors.
func (b *builder) line(lineNo int, text string) error {
	if m := fileIDPattern.FindStringSubmatch(text); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return &SyntaxError{Line: lineNo, Text: text, Err: err}
		}
		b.begin(id)
		return nil
	}

	if b.state != inRecord {
		return nil
	}

	switch {
	case filenamePattern.MatchString(text):
		b.current.Name = filenamePattern.FindStringSubmatch(text)[1]
	case fileSizePattern.MatchString(text):
		size, err := strconv.ParseInt(fileSizePattern.FindStringSubmatch(text)[1], 10, 64)
		if err != nil {
			return &SyntaxError{Line: lineNo, Text: text, Err: err}
		}
		b.current.Size = &size
	case parentIDPattern.MatchString(text):
		parent, err := strconv.ParseInt(parentIDPattern.FindStringSubmatch(text)[1], 10, 64)
		if err != nil {
			return &SyntaxError{Line: lineNo, Text: text, Err: err}
		}
		b.current.ParentID = &parent
	}
	return nil
}

// finish handles end of input: a record still open is flushed.
func (b *builder) finish() *Index {
	b.flush()
	return b.index
}

// Parse reads a snapshot and returns its index.
// Unrecognised lines are ignored. A read error aborts the whole parse.
func Parse(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	b := newBuilder()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := b.line(lineNo, strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}

	return b.finish(), nil
}

// ParseFile opens the snapshot at path and parses it.
// A missing file yields *MissingListingError; any other I/O failure is
// returned wrapped.
func ParseFile(path string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingListingError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer file.Close()

	idx, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", path, err)
	}
	return idx, nil
}
