// Package listing parses device snapshots and indexes their file records.
//
// A snapshot is the text produced by the capture command (mtp-files). Each
// record starts with an unindented "File ID: <n>" line followed by indented
// field lines:
//
//	File ID: 10
//	   Filename: photo.jpg
//	   File size 2048 (0x00000800) bytes
//	   Parent ID: 1
//
// The resulting Index maps ids to records and names to the ids that carry
// that name, in snapshot order.
package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/harrison/mtpget/internal/models"
)

// Index holds the records of one snapshot keyed by id and by name.
// An Index is built once by the parser and is read-only afterwards.
type Index struct {
	byID   map[int64]models.FileRecord
	byName map[string][]int64
}

func newIndex() *Index {
	return &Index{
		byID:   make(map[int64]models.FileRecord),
		byName: make(map[string][]int64),
	}
}

// add inserts a record. A recurring id replaces the earlier record and is
// moved to the bucket of its new name.
func (idx *Index) add(rec models.FileRecord) {
	if prev, ok := idx.byID[rec.ID]; ok {
		idx.removeFromBucket(prev.Name, rec.ID)
	}
	idx.byID[rec.ID] = rec
	idx.byName[rec.Name] = append(idx.byName[rec.Name], rec.ID)
}

func (idx *Index) removeFromBucket(name string, id int64) {
	ids := idx.byName[name]
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(idx.byName, name)
		return
	}
	idx.byName[name] = ids
}

// Len returns the number of records in the index.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// Record returns the record with the given id.
func (idx *Index) Record(id int64) (models.FileRecord, bool) {
	rec, ok := idx.byID[id]
	return rec, ok
}

// IDs returns the ids recorded under name, in snapshot order.
// The returned slice is a copy.
func (idx *Index) IDs(name string) []int64 {
	ids := idx.byName[name]
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// Names returns every known name in lexicographic order.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the full listing: names in lexicographic order and, within
// a name, ids in snapshot order.
func (idx *Index) Records() []models.FileRecord {
	records := make([]models.FileRecord, 0, len(idx.byID))
	for _, name := range idx.Names() {
		for _, id := range idx.byName[name] {
			records = append(records, idx.byID[id])
		}
	}
	return records
}

// Candidates returns every known name and every known id (as decimal text)
// that satisfies match. A nil match accepts everything. Names come first in
// lexicographic order, then ids in ascending order.
func (idx *Index) Candidates(match func(string) bool) []string {
	var out []string
	for _, name := range idx.Names() {
		if name == "" {
			continue
		}
		if match == nil || match(name) {
			out = append(out, name)
		}
	}

	ids := make([]int64, 0, len(idx.byID))
	for id := range idx.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s := strconv.FormatInt(id, 10)
		if match == nil || match(s) {
			out = append(out, s)
		}
	}
	return out
}

// HasPrefix returns a Candidates matcher accepting strings that start with prefix.
func HasPrefix(prefix string) func(string) bool {
	return func(s string) bool {
		return strings.HasPrefix(s, prefix)
	}
}
