package ingest

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"bookseed/internal/extract"
	"bookseed/internal/fetch"
	"bookseed/internal/ident"
	"bookseed/internal/logging"
	"bookseed/internal/normalize"
	"bookseed/pkg/models"
)

const searchFields = "key,title,author_name,edition_key,isbn,isbn_10,isbn_13"

type query struct {
	kind  string
	value string
	q     string
	limit int
}

// OpenLibrary discovers books through search.json and fetches editions,
// works or ISBN records.
type OpenLibrary struct {
	cfg OpenLibraryConfig
	get fetch.Getter
}

func NewOpenLibrary(cfg OpenLibraryConfig, get fetch.Getter) *OpenLibrary {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenLibrary{cfg: cfg, get: get}
}

func (s *OpenLibrary) Name() string { return models.SourceOpenLibrary }

func (s *OpenLibrary) queries() []query {
	var qs []query
	for _, v := range s.cfg.Subjects {
		qs = append(qs, query{"subject", v, "subject:" + v, s.cfg.SubjectLimit})
	}
	for _, v := range s.cfg.Authors {
		qs = append(qs, query{"author", v, "author:" + v, s.cfg.AuthorLimit})
	}
	for _, v := range s.cfg.Keywords {
		qs = append(qs, query{"keyword", v, v, s.cfg.KeywordLimit})
	}
	return qs
}

func (s *OpenLibrary) Discover(ctx context.Context, f *Frontier) error {
	log := logging.WithPrefix("openlibrary")
	qs := s.queries()
	for i, q := range qs {
		if f.Full() {
			break
		}
		got := s.searchAll(ctx, q, f)
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("searched", "n", i+1, "of", len(qs), "type", q.kind, "value", q.value, "new", got)
	}
	return nil
}

// searchAll pages one query until its limit, an empty page, or the end of results.
func (s *OpenLibrary) searchAll(ctx context.Context, q query, f *Frontier) int {
	got := 0
	for offset := 0; got < q.limit && !f.Full(); offset += s.cfg.PageSize {
		rec, ok := s.json(ctx, s.cfg.BaseURL+"/search.json", url.Values{
			"q":      {q.q},
			"limit":  {strconv.Itoa(s.cfg.PageSize)},
			"offset": {strconv.Itoa(offset)},
			"fields": {searchFields},
		})
		if !ok {
			break
		}

		fresh := 0
		for _, h := range extract.OpenLibrarySearch(rec) {
			if got >= q.limit {
				break
			}
			isbn := normalize.CleanISBN(h.ISBN)
			id, _ := ident.OpenLibrary(h.Key, isbn)
			if f.Offer(Candidate{ID: id, Key: h.Key, ISBN: isbn, Title: h.Title}) {
				fresh++
				got++
			}
		}
		if fresh == 0 {
			break
		}

		total, _ := rec.String("numFound", "num_found")
		if n, err := strconv.Atoi(total); err != nil || offset+s.cfg.PageSize >= n {
			break
		}
	}
	return got
}

func (s *OpenLibrary) Fetch(ctx context.Context, c Candidate) (models.RawBook, bool) {
	var (
		raw models.RawBook
		ok  bool
	)
	switch {
	case strings.HasPrefix(c.Key, "/works/"):
		raw, ok = s.fetchWork(ctx, c.Key)
	case c.Key != "":
		raw, ok = s.fetchEdition(ctx, c.Key)
	case c.ISBN != "":
		raw, ok = s.fetchISBN(ctx, c.ISBN)
	}
	if !ok {
		return models.RawBook{}, false
	}
	if raw.ISBN == "" {
		raw.ISBN = c.ISBN
	}
	if raw.Title == "" {
		raw.Title = c.Title
	}
	return raw, true
}

func (s *OpenLibrary) fetchEdition(ctx context.Context, key string) (models.RawBook, bool) {
	doc, ok := s.json(ctx, s.cfg.BaseURL+key+".json", nil)
	if !ok {
		return models.RawBook{}, false
	}
	return s.raw(doc, key), true
}

// fetchWork prefers the work's first edition, which carries publisher and
// isbn, and falls back to the work itself.
func (s *OpenLibrary) fetchWork(ctx context.Context, key string) (models.RawBook, bool) {
	work, ok := s.json(ctx, s.cfg.BaseURL+key+".json", nil)
	if !ok {
		return models.RawBook{}, false
	}
	doc := work
	if eds, ok := s.json(ctx, s.cfg.BaseURL+key+"/editions.json", url.Values{"limit": {"1"}}); ok {
		if ed, ok := eds.FirstObject("entries"); ok {
			doc = ed
			if _, has := ed.String("title"); !has {
				if title, ok := work.String("title"); ok {
					doc["title"] = title
				}
			}
		}
	}
	return s.raw(doc, key), true
}

func (s *OpenLibrary) fetchISBN(ctx context.Context, isbn string) (models.RawBook, bool) {
	body, ok := s.json(ctx, s.cfg.BaseURL+"/api/books", url.Values{
		"bibkeys": {"ISBN:" + isbn},
		"format":  {"json"},
		"jscmd":   {"data"},
	})
	if !ok {
		return models.RawBook{}, false
	}
	doc, ok := body.Object("ISBN:" + isbn)
	if !ok {
		return models.RawBook{}, false
	}
	raw := extract.OpenLibrary(doc)
	if raw.Key == "" {
		raw.URL = s.cfg.BaseURL + "/isbn/" + isbn
	} else {
		raw.URL = s.cfg.BaseURL + "/" + strings.TrimPrefix(raw.Key, "/")
	}
	return raw, true
}

func (s *OpenLibrary) raw(doc extract.Record, key string) models.RawBook {
	raw := extract.OpenLibrary(doc)
	if raw.Key == "" {
		raw.Key = key
	}
	raw.URL = s.cfg.BaseURL + "/" + strings.TrimPrefix(raw.Key, "/")
	return raw
}

// ResolveAuthors looks up a key-only author and caches the name, or an
// empty name when the lookup fails so it is not retried.
func (s *OpenLibrary) ResolveAuthors(ctx context.Context, raw models.RawBook, lookup normalize.AuthorLookup) {
	key := strings.TrimSpace(raw.Author.Key)
	if raw.Author.Name != "" || !strings.HasPrefix(key, "/authors/") {
		return
	}
	if _, cached := lookup[key]; cached {
		return
	}
	doc, ok := s.json(ctx, s.cfg.BaseURL+key+".json", nil)
	if !ok {
		if ctx.Err() == nil {
			lookup[key] = ""
		}
		return
	}
	name, _ := extract.OpenLibraryAuthorName(doc)
	lookup[key] = name
}

func (s *OpenLibrary) json(ctx context.Context, u string, params url.Values) (extract.Record, bool) {
	body, ok := s.get.Get(ctx, u, params)
	if !ok {
		return nil, false
	}
	return extract.ParseRecord(body)
}
