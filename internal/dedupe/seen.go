// Package dedupe holds the two duplicate filters of the pipeline: the
// pre-fetch identifier set and the export-time name filter.
package dedupe

import "strings"

// Seen tracks identifiers and ISBNs already present in the store or
// produced earlier in the current run. It is owned by one pipeline and
// is not safe for concurrent use.
type Seen struct {
	ids map[string]struct{}
}

// NewSeen returns a set seeded with the given identifiers.
func NewSeen(seed map[string]struct{}) *Seen {
	s := &Seen{ids: make(map[string]struct{}, len(seed))}
	for k := range seed {
		s.ids[k] = struct{}{}
	}
	return s
}

// Has reports whether id or a non-empty isbn was seen.
func (s *Seen) Has(id, isbn string) bool {
	if id = strings.TrimSpace(id); id != "" {
		if _, ok := s.ids[id]; ok {
			return true
		}
	}
	if isbn = strings.TrimSpace(isbn); isbn != "" {
		if _, ok := s.ids[isbn]; ok {
			return true
		}
	}
	return false
}

// Add records id and isbn; empty values are ignored.
func (s *Seen) Add(id, isbn string) {
	if id = strings.TrimSpace(id); id != "" {
		s.ids[id] = struct{}{}
	}
	if isbn = strings.TrimSpace(isbn); isbn != "" {
		s.ids[isbn] = struct{}{}
	}
}

// Claim adds the candidate and returns true, or returns false if it was
// already seen.
func (s *Seen) Claim(id, isbn string) bool {
	if s.Has(id, isbn) {
		return false
	}
	s.Add(id, isbn)
	return true
}

// Len is the number of tracked keys.
func (s *Seen) Len() int { return len(s.ids) }
