package ingest

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"bookseed/pkg/models"
)

// fakeGetter serves bodies keyed by url path, plus "?page=N" when a page
// parameter is present.
type fakeGetter struct {
	mu    sync.Mutex
	pages map[string]string
	calls []url.Values
}

func (g *fakeGetter) Get(_ context.Context, rawURL string, params url.Values) ([]byte, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	key := u.Path
	if p := q.Get("page"); p != "" {
		key += "?page=" + p
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	q.Set("_key", key)
	g.calls = append(g.calls, q)
	body, ok := g.pages[key]
	return []byte(body), ok
}

func (g *fakeGetter) requested(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Get("_key") == key {
			n++
		}
	}
	return n
}

// fakeSource offers fixed candidates and serves their raw records.
type fakeSource struct {
	candidates []Candidate
	raws       map[string]models.RawBook
	onFetch    func(n int)
	fetched    int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Discover(_ context.Context, f *Frontier) error {
	for _, c := range s.candidates {
		f.Offer(c)
	}
	return nil
}

func (s *fakeSource) Fetch(_ context.Context, c Candidate) (models.RawBook, bool) {
	s.fetched++
	if s.onFetch != nil {
		s.onFetch(s.fetched)
	}
	raw, ok := s.raws[c.ID]
	return raw, ok
}

// fakeWriter is an in-memory Writer whose InsertBatch can be made to fail.
type fakeWriter struct {
	ids      map[string]struct{}
	books    []models.Book
	runs     []models.Run
	failures int // remaining InsertBatch calls that fail
	inserts  int
}

var errInsert = errors.New("insert failed")

func (w *fakeWriter) Identifiers(context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(w.ids))
	for k := range w.ids {
		out[k] = struct{}{}
	}
	return out, nil
}

func (w *fakeWriter) InsertBatch(_ context.Context, books []models.Book) (int, error) {
	w.inserts++
	if w.failures > 0 {
		w.failures--
		return 0, errInsert
	}
	if w.ids == nil {
		w.ids = map[string]struct{}{}
	}
	n := 0
	for _, b := range books {
		if _, ok := w.ids[b.BookID]; ok {
			continue
		}
		w.ids[b.BookID] = struct{}{}
		w.books = append(w.books, b)
		n++
	}
	return n, nil
}

func (w *fakeWriter) RecordRun(_ context.Context, run models.Run) error {
	w.runs = append(w.runs, run)
	return nil
}
