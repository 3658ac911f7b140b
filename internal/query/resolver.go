package query

import (
	"github.com/harrison/mtpget/internal/listing"
	"github.com/harrison/mtpget/internal/models"
)

// Resolution is the result of resolving terms against an index.
type Resolution struct {
	// Records are the matched records, each id at most once, in order of first match
	Records []models.FileRecord

	// Unmatched lists the raw text of terms that selected nothing, in caller order
	Unmatched []string
}

// resolver carries the state of one Resolve call.
type resolver struct {
	idx     *listing.Index
	seen    map[int64]bool
	records []models.FileRecord
}

func (r *resolver) emit(id int64) {
	if r.seen[id] {
		return
	}
	rec, ok := r.idx.Record(id)
	if !ok {
		return
	}
	r.seen[id] = true
	r.records = append(r.records, rec)
}

func (r *resolver) emitName(name string) {
	for _, id := range r.idx.IDs(name) {
		r.emit(id)
	}
}

// Resolve returns the records selected by terms.
//
// With no terms every record is returned: names in lexicographic order,
// ids within a name in snapshot order.
//
// Otherwise names are visited in lexicographic order and, for each name,
// terms are evaluated in the order given:
//   - an id term emits its record the first time it is reached, then
//     evaluation continues with the next term
//   - the first literal or wildcard term that matches the name emits every
//     id under that name and ends evaluation for the name
//
// An id is emitted at most once per call regardless of how many terms select it.
func Resolve(idx *listing.Index, terms []Term) *Resolution {
	if len(terms) == 0 {
		return &Resolution{Records: idx.Records()}
	}

	r := &resolver{
		idx:  idx,
		seen: make(map[int64]bool),
	}
	matched := make([]bool, len(terms))

	for _, name := range idx.Names() {
		for i, term := range terms {
			if term.Kind == TermNumericID {
				if _, ok := idx.Record(term.ID); ok {
					matched[i] = true
					r.emit(term.ID)
				}
				continue
			}
			if term.matchesName(name) {
				matched[i] = true
				r.emitName(name)
				break
			}
		}
	}

	res := &Resolution{Records: r.records}
	for i, term := range terms {
		// a term shadowed by an earlier one still counts as matched
		if !matched[i] && !selectsAnyName(idx, term) {
			res.Unmatched = append(res.Unmatched, term.Raw)
		}
	}
	return res
}

func selectsAnyName(idx *listing.Index, term Term) bool {
	if term.Kind == TermNumericID {
		return false
	}
	for _, name := range idx.Names() {
		if term.matchesName(name) {
			return true
		}
	}
	return false
}

// Lookup parses the snapshot at path, classifies raw and resolves it.
// A missing snapshot yields *listing.MissingListingError before any term
// is examined.
func Lookup(path string, raw []string) (*Resolution, error) {
	idx, err := listing.ParseFile(path)
	if err != nil {
		return nil, err
	}

	terms, err := ParseTerms(raw)
	if err != nil {
		return nil, err
	}

	return Resolve(idx, terms), nil
}

// Complete returns completion candidates (names and ids) starting with toComplete.
func Complete(idx *listing.Index, toComplete string) []string {
	return idx.Candidates(listing.HasPrefix(toComplete))
}

// CompleteFile parses the snapshot at path and completes toComplete against it.
func CompleteFile(path, toComplete string) ([]string, error) {
	idx, err := listing.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return Complete(idx, toComplete), nil
}
