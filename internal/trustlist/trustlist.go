// Package trustlist parses the set of creators whose redirects are reviewed
// without heuristic checks. The list lives on a wiki page between two literal
// markers, one username per line, optionally bullet-prefixed.
package trustlist

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultStartMarker = "<!-- BEGIN TRUSTED CREATORS -->"
	DefaultEndMarker   = "<!-- END TRUSTED CREATORS -->"
)

type Markers struct {
	Start string
	End   string
}

func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// ParseError is returned when a delimiter marker is missing from the source.
// An empty block between present markers is not an error.
type ParseError struct {
	Marker string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trust list marker %q not found", e.Marker)
}

// Set is a read-only membership set of creator names.
type Set struct {
	names map[string]struct{}
}

func NewSet(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			s.names[name] = struct{}{}
		}
	}
	return s
}

func (s Set) Contains(creator string) bool {
	_, ok := s.names[creator]
	return ok
}

func (s Set) Len() int {
	return len(s.names)
}

// Names returns the members in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Parse extracts the trust list from source text.
func Parse(source string, markers Markers) (Set, error) {
	if markers.Start == "" || markers.End == "" {
		markers = DefaultMarkers()
	}

	_, rest, ok := strings.Cut(source, markers.Start)
	if !ok {
		return Set{}, &ParseError{Marker: markers.Start}
	}
	block, _, ok := strings.Cut(rest, markers.End)
	if !ok {
		return Set{}, &ParseError{Marker: markers.End}
	}

	var names []string
	scanner := bufio.NewScanner(strings.NewReader(block))
	for scanner.Scan() {
		if name := entryName(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return Set{}, fmt.Errorf("scan trust list: %w", err)
	}
	return NewSet(names...), nil
}

func entryName(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "*#")
	return strings.TrimSpace(line)
}
