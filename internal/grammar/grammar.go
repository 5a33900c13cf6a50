// Package grammar parses wide column headers into category paths.
//
// The naming convention recognises four shapes:
//
//	All                      the undifferentiated aggregate
//	Sex:Female               a single category assignment
//	Sex:Female|Age:Under 18  a composite of assignments
//	All|Unit:Inches          the aggregate broken out by the other segments
//
// Any other header is not part of the convention and is ignored by the
// reshape. Parsing is purely syntactic; category names and values are
// case-sensitive literal strings.
package grammar

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/indicator-tidy/internal/config"
	"github.com/ginjaninja78/indicator-tidy/internal/types"
)

const (
	segmentSeparator  = "|"
	categorySeparator = ":"
)

// Kind is the shape of a parsed column header.
type Kind int

const (
	// KindNone is a header outside the convention (including malformed ones).
	KindNone Kind = iota
	// KindTotal is the total marker on its own.
	KindTotal
	// KindPair is a single category:value header.
	KindPair
	// KindComposite is a pipe-delimited list of segments.
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindTotal:
		return "total"
	case KindPair:
		return "pair"
	case KindComposite:
		return "composite"
	default:
		return "none"
	}
}

// Segment is one part of a composite header: the total marker or a pair.
type Segment struct {
	Total    bool
	Category types.Category
}

// ColumnSpec is a parsed header.
type ColumnSpec struct {
	Header   string
	Kind     Kind
	Pair     types.Category
	Segments []Segment

	// Problem explains why a header that looks like part of the convention
	// was rejected. Empty for well-formed and for plainly unrelated headers.
	Problem string
}

// Matched reports whether the column takes part in the reshape.
func (s ColumnSpec) Matched() bool {
	return s.Kind != KindNone
}

// Malformed reports whether the header partially matched the convention.
func (s ColumnSpec) Malformed() bool {
	return s.Problem != ""
}

// HasTotal reports whether the column carries the aggregate measurement,
// either on its own or tagged by the other segments of a composite.
func (s ColumnSpec) HasTotal() bool {
	if s.Kind == KindTotal {
		return true
	}
	for _, segment := range s.Segments {
		if segment.Total {
			return true
		}
	}
	return false
}

// Categories returns the category set the column assigns to its rows.
// Total segments contribute no category.
func (s ColumnSpec) Categories() []types.Category {
	switch s.Kind {
	case KindPair:
		return []types.Category{s.Pair}
	case KindComposite:
		categories := make([]types.Category, 0, len(s.Segments))
		for _, segment := range s.Segments {
			if !segment.Total {
				categories = append(categories, segment.Category)
			}
		}
		return categories
	default:
		return nil
	}
}

// Parse parses a single header string.
func Parse(header string, convention config.Convention) ColumnSpec {
	spec := ColumnSpec{Header: header}

	switch {
	case header == convention.Total:
		spec.Kind = KindTotal

	case strings.Contains(header, segmentSeparator):
		segments, problem := parseSegments(header, convention)
		if problem != "" {
			spec.Problem = problem
			return spec
		}
		spec.Kind = KindComposite
		spec.Segments = segments

	case strings.Contains(header, categorySeparator):
		pair, problem := parsePair(header)
		if problem != "" {
			spec.Problem = problem
			return spec
		}
		spec.Kind = KindPair
		spec.Pair = pair
	}

	return spec
}

func parseSegments(header string, convention config.Convention) ([]Segment, string) {
	parts := strings.Split(header, segmentSeparator)
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		if part == convention.Total {
			segments = append(segments, Segment{Total: true})
			continue
		}
		if !strings.Contains(part, categorySeparator) {
			return nil, fmt.Sprintf("segment %q is neither %q nor category:value", part, convention.Total)
		}
		pair, problem := parsePair(part)
		if problem != "" {
			return nil, problem
		}
		if seen[pair.Name] {
			return nil, fmt.Sprintf("category %q appears more than once", pair.Name)
		}
		seen[pair.Name] = true
		segments = append(segments, Segment{Category: pair})
	}

	return segments, ""
}

func parsePair(text string) (types.Category, string) {
	name, value, _ := strings.Cut(text, categorySeparator)
	if name == "" {
		return types.Category{}, fmt.Sprintf("%q has an empty category name", text)
	}
	if value == "" {
		return types.Category{}, fmt.Sprintf("%q has an empty category value", text)
	}
	return types.Category{Name: name, Value: value}, ""
}

// ParseAll parses every header of a table, keeping column order.
func ParseAll(headers []string, convention config.Convention) []ColumnSpec {
	specs := make([]ColumnSpec, len(headers))
	for i, header := range headers {
		specs[i] = Parse(header, convention)
	}
	return specs
}
