// Package ingest drives sources through normalization, validation and
// batched insert-if-absent persistence.
package ingest

import (
	"context"

	"bookseed/internal/dedupe"
	"bookseed/internal/normalize"
	"bookseed/pkg/models"
)

// Candidate is a record discovered on a listing or search page, not yet
// fetched. ID is the identifier the record will be stored under.
type Candidate struct {
	ID    string
	Key   string // OpenLibrary key or site product id
	ISBN  string
	URL   string
	Title string
	Genre string          // listing category, used when the detail page has none
	Raw   *models.RawBook // set when discovery already yields the full record
}

// Source is one upstream catalog.
type Source interface {
	Name() string
	// Discover offers candidates to f until f is full or the source is exhausted.
	Discover(ctx context.Context, f *Frontier) error
	// Fetch retrieves and extracts one candidate. false means the record is
	// unavailable and should be counted as failed.
	Fetch(ctx context.Context, c Candidate) (models.RawBook, bool)
}

// AuthorResolver is implemented by sources whose records reference authors
// by key. Resolved names are cached in lookup.
type AuthorResolver interface {
	ResolveAuthors(ctx context.Context, raw models.RawBook, lookup normalize.AuthorLookup)
}

// Frontier collects new candidates during discovery. Candidates whose id
// or isbn was already seen are skipped.
type Frontier struct {
	seen    *dedupe.Seen
	limit   int
	out     []Candidate
	skipped int
}

// NewFrontier returns a Frontier over seen. A limit of 0 is unbounded.
func NewFrontier(seen *dedupe.Seen, limit int) *Frontier {
	return &Frontier{seen: seen, limit: limit}
}

// Offer accepts c if there is room and it is new.
func (f *Frontier) Offer(c Candidate) bool {
	if f.Full() {
		return false
	}
	if !f.seen.Claim(c.ID, c.ISBN) {
		f.skipped++
		return false
	}
	f.out = append(f.out, c)
	return true
}

// Full reports whether the limit has been reached.
func (f *Frontier) Full() bool { return f.limit > 0 && len(f.out) >= f.limit }

func (f *Frontier) Candidates() []Candidate { return f.out }

func (f *Frontier) Skipped() int { return f.skipped }
