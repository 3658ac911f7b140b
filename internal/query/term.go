// Package query resolves user query terms against a snapshot index.
//
// A term is classified once, when parsed from user input:
//
//   - all digits ("42") selects the record with that id
//   - a shell wildcard ("*.jpg", "IMG_00??.png", "[ab]*", "{a,b}.txt")
//     selects every name the pattern matches in full
//   - anything else selects the name it equals exactly
//
// Resolve walks names in lexicographic order and emits each id at most once.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TermKind identifies how a term is matched.
type TermKind int

const (
	// TermLiteral matches a name exactly (case-sensitive)
	TermLiteral TermKind = iota
	// TermNumericID matches a single record by id
	TermNumericID
	// TermWildcard matches names with an anchored glob
	TermWildcard
)

// String returns the string representation of the TermKind
func (k TermKind) String() string {
	switch k {
	case TermLiteral:
		return "literal"
	case TermNumericID:
		return "id"
	case TermWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

var (
	numericPattern = regexp.MustCompile(`^\d+$`)
	bracePattern   = regexp.MustCompile(`\{[^{}]*,[^{}]*\}`)
)

// Term is one classified query token.
type Term struct {
	Kind TermKind
	// Raw is the text the user supplied
	Raw string
	// ID is set for TermNumericID
	ID int64
}

// ParseTerm classifies a single query string.
// A digit string too large for an id is treated as a literal name.
func ParseTerm(raw string) (Term, error) {
	if numericPattern.MatchString(raw) {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Term{Kind: TermNumericID, Raw: raw, ID: id}, nil
		}
		return Term{Kind: TermLiteral, Raw: raw}, nil
	}

	if isWildcard(raw) {
		if !doublestar.ValidatePattern(raw) {
			return Term{}, fmt.Errorf("invalid wildcard pattern %q", raw)
		}
		return Term{Kind: TermWildcard, Raw: raw}, nil
	}

	return Term{Kind: TermLiteral, Raw: raw}, nil
}

// ParseTerms classifies every query string, preserving order.
func ParseTerms(raw []string) ([]Term, error) {
	terms := make([]Term, 0, len(raw))
	for _, r := range raw {
		term, err := ParseTerm(r)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func isWildcard(s string) bool {
	return strings.ContainsAny(s, "*?[") || bracePattern.MatchString(s)
}

// matchesName reports whether a name-matching term selects name.
// Numeric terms never match by name.
func (t Term) matchesName(name string) bool {
	switch t.Kind {
	case TermLiteral:
		return t.Raw == name
	case TermWildcard:
		matched, err := doublestar.Match(t.Raw, name)
		return err == nil && matched
	default:
		return false
	}
}
