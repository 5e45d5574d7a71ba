package ingest

import (
	"context"
	"strings"
	"testing"

	"bookseed/internal/dedupe"
	"bookseed/internal/normalize"
	"bookseed/pkg/models"
)

func TestOpenLibraryFetchWork(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{
		"/works/OL45W.json":          `{"key": "/works/OL45W", "title": "Dune", "authors": [{"author": {"key": "/authors/OL2A"}}]}`,
		"/works/OL45W/editions.json": `{"entries": [{"key": "/books/OL9M", "publishers": ["Ace"], "isbn_10": ["0441013597"]}]}`,
	}}
	src := NewOpenLibrary(DefaultOpenLibraryConfig(), g)
	raw, ok := src.Fetch(context.Background(), Candidate{ID: "OL45W", Key: "/works/OL45W"})
	if !ok {
		t.Fatal("fetch failed")
	}
	if raw.Key != "/books/OL9M" || raw.Title != "Dune" || raw.Publisher != "Ace" || raw.ISBN != "0441013597" {
		t.Fatalf("raw = %+v", raw)
	}
	if raw.URL != "https://openlibrary.org/books/OL9M" {
		t.Fatalf("url = %q", raw.URL)
	}
	if g.calls[1].Get("limit") != "1" {
		t.Fatalf("editions params = %v", g.calls[1])
	}
}

func TestOpenLibraryFetchISBN(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{
		"/api/books": `{"ISBN:9780441013593": {"key": "/books/OL1M", "title": "Dune",
			"authors": [{"name": "Frank Herbert", "url": "https://openlibrary.org/authors/OL2A"}],
			"publishers": [{"name": "Ace"}]}}`,
	}}
	src := NewOpenLibrary(DefaultOpenLibraryConfig(), g)
	raw, ok := src.Fetch(context.Background(), Candidate{ID: "ISBN_9780441013593", ISBN: "9780441013593"})
	if !ok {
		t.Fatal("fetch failed")
	}
	want := models.RawBook{
		Source:    models.SourceOpenLibrary,
		Key:       "/books/OL1M",
		URL:       "https://openlibrary.org/books/OL1M",
		Title:     "Dune",
		Author:    models.AuthorRef{Name: "Frank Herbert"},
		Publisher: "Ace",
		ISBN:      "9780441013593",
	}
	if raw != want {
		t.Fatalf("raw = %+v", raw)
	}
	c := g.calls[0]
	if c.Get("bibkeys") != "ISBN:9780441013593" || c.Get("jscmd") != "data" || c.Get("format") != "json" {
		t.Fatalf("params = %v", c)
	}

	if _, ok := src.Fetch(context.Background(), Candidate{ISBN: "9999999999999"}); ok {
		t.Fatal("unknown isbn should fail")
	}
}

func TestOpenLibraryResolveAuthorsCachesMisses(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{}}
	src := NewOpenLibrary(DefaultOpenLibraryConfig(), g)
	lookup := normalize.AuthorLookup{}
	raw := models.RawBook{Author: models.AuthorRef{Key: "/authors/OL404A"}}

	src.ResolveAuthors(context.Background(), raw, lookup)
	src.ResolveAuthors(context.Background(), raw, lookup)
	if n := g.requested("/authors/OL404A.json"); n != 1 {
		t.Fatalf("requested %d times", n)
	}
	if name, ok := lookup["/authors/OL404A"]; !ok || name != "" {
		t.Fatalf("lookup = %v", lookup)
	}

	src.ResolveAuthors(context.Background(), models.RawBook{Author: models.AuthorRef{Name: "Named", Key: "/authors/OL1A"}}, lookup)
	if len(g.calls) != 1 {
		t.Fatal("named author should not be looked up")
	}
}

func TestOpenLibraryDiscoverPagesAndLimits(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{
		"/search.json": `{"numFound": 500, "docs": [
			{"key": "/works/OL1W", "edition_key": ["OL1M"]},
			{"key": "/works/OL2W", "edition_key": ["OL2M"]},
			{"key": "/works/OL3W"},
			{"title": "no key", "isbn": ["978-0-441-01359-3"]}
		]}`,
	}}
	cfg := DefaultOpenLibraryConfig()
	cfg.Subjects = []string{"Fiction"}
	cfg.Authors = []string{"Frank Herbert"}
	cfg.Keywords = nil
	cfg.SubjectLimit = 3
	cfg.AuthorLimit = 10
	cfg.PageSize = 4

	f := NewFrontier(dedupe.NewSeen(nil), 0)
	if err := NewOpenLibrary(cfg, g).Discover(context.Background(), f); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, c := range f.Candidates() {
		ids = append(ids, c.ID)
	}
	// The subject query stops at its limit; the author query pages once,
	// then stops because the next page has nothing new.
	if got := strings.Join(ids, ","); got != "OL1M,OL2M,OL3W,ISBN_9780441013593" {
		t.Fatalf("ids = %s", got)
	}
	if len(g.calls) != 3 {
		t.Fatalf("search calls = %d", len(g.calls))
	}
	first := g.calls[0]
	if first.Get("q") != "subject:Fiction" || first.Get("limit") != "4" || first.Get("offset") != "0" || first.Get("fields") != searchFields {
		t.Fatalf("first search = %v", first)
	}
	if g.calls[1].Get("q") != "author:Frank Herbert" || g.calls[2].Get("offset") != "4" {
		t.Fatalf("later searches = %v %v", g.calls[1], g.calls[2])
	}
	if f.Skipped() != 3+4 {
		t.Fatalf("skipped = %d", f.Skipped())
	}
}

const booksListing = `<html><body>
<div class="item"><a href="https://www.books.com.tw/products/0010001?loc=1">深入理解系統</a></div>
<div class="item"><a href="/products/0010002">Book B</a></div>
</body></html>`

const booksDetail = `<html><body>
<h1>深入理解系統</h1>
<span itemprop="author">作者：王小明</span>
<span itemprop="publisher">天下文化</span>
<ul><li class="price01">定價：450元</li></ul>
<p>ISBN：9789571234567</p>
</body></html>`

func TestBooksComTWSource(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{
		"/web/cat01?page=1": booksListing,
		"/web/cat01?page=2": booksListing,
		"/products/0010001": booksDetail,
		"/products/0010002": `<html><body><p>sold out</p></body></html>`,
	}}
	cfg := ShopConfig{MaxPages: 5, Categories: []ShopCategory{{Name: "文學小說", URL: "https://www.books.com.tw/web/cat01", Max: 10}}}
	src := NewBooksComTW(cfg, g)

	f := NewFrontier(dedupe.NewSeen(nil), 0)
	if err := src.Discover(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	cands := f.Candidates()
	if len(cands) != 2 || cands[0].ID != "BOOKS_COM_TW_0010001" || cands[1].ID != "BOOKS_COM_TW_0010002" {
		t.Fatalf("candidates = %+v", cands)
	}
	if cands[0].URL != "https://www.books.com.tw/products/0010001" {
		t.Fatalf("detail url = %q", cands[0].URL)
	}
	if g.requested("/web/cat01?page=3") != 0 {
		t.Fatal("paging should stop after a page with nothing new")
	}

	w := &fakeWriter{}
	p := newPipeline(testConfig(), w)
	run, err := p.Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if run.Inserted != 2 {
		t.Fatalf("stats = %+v", run.Stats)
	}
	want := models.Book{
		BookID:    "BOOKS_COM_TW_0010001",
		Name:      "深入理解系統",
		Author:    "王小明",
		Publisher: "天下文化",
		Price:     450,
		ISBN:      "9789571234567",
		SourceID:  "0010001",
		SourceURL: "https://www.books.com.tw/products/0010001",
		Genre:     "文學小說",
	}
	if w.books[0] != want {
		t.Fatalf("book = %+v", w.books[0])
	}
	if w.books[1].Name != "Book B" || w.books[1].SourceID != "0010002" {
		t.Fatalf("listing title fallback: %+v", w.books[1])
	}
}

func TestEsliteSource(t *testing.T) {
	g := &fakeGetter{pages: map[string]string{
		"/category/3/29": `<html><body>
			<a href="/product/1001">書A</a>
			<a href="/product/1001">書A again</a>
			<a href="https://www.eslite.com/goods/abc-slug">書B</a>
		</body></html>`,
		"/product/1001": `<html><body>
			<nav class="breadcrumb"><a>首頁</a><a>文學</a></nav>
			<h1 class="title">挪威的森林</h1>
			<div class="author">作者：村上春樹</div>
			<span class="price">NT$ 380</span>
		</body></html>`,
	}}
	cfg := ShopConfig{MaxPages: 3, Categories: []ShopCategory{{Name: "世界文學", URL: "https://www.eslite.com/category/3/29"}}}

	w := &fakeWriter{}
	run, err := newPipeline(testConfig(), w).Run(context.Background(), NewEslite(cfg, g))
	if err != nil {
		t.Fatal(err)
	}
	if want := (models.Stats{Fetched: 1, Processed: 1, Inserted: 1, Failed: 1}); run.Stats != want {
		t.Fatalf("stats = %+v", run.Stats)
	}
	if g.requested("/category/3/29?page=2") != 1 {
		t.Fatal("page 2 should carry a page parameter")
	}
	b := w.books[0]
	if b.BookID != "ESLITE_1001" || b.Name != "挪威的森林" || b.Author != "村上春樹" || b.Price != 380 || b.Genre != "文學" {
		t.Fatalf("book = %+v", b)
	}
}

func TestWithPage(t *testing.T) {
	cases := []struct {
		url       string
		page      int
		keepFirst bool
		want      string
	}{
		{"https://x.test/c/1", 1, false, "https://x.test/c/1"},
		{"https://x.test/c/1", 2, false, "https://x.test/c/1?page=2"},
		{"https://x.test/c?loc=a", 1, true, "https://x.test/c?loc=a&page=1"},
		{"https://x.test/c?page=4&loc=a", 3, true, "https://x.test/c?loc=a&page=3"},
	}
	for _, c := range cases {
		if got := withPage(c.url, c.page, c.keepFirst); got != c.want {
			t.Errorf("withPage(%q, %d) = %q, want %q", c.url, c.page, got, c.want)
		}
	}
}

func TestCSVSource(t *testing.T) {
	in := "\ufeffbook_id,name,author,publisher,price,isbn,source_id,genre\n" +
		"OL1M,Dune,Frank Herbert,Ace,42,9780441013593,books/OL1M,\n" +
		"OL1M,Dune again,,,,,,\n" +
		",No id,,,,,,\n" +
		"ESLITE_9,  ,,,,,,\n" +
		"BOOKS_COM_TW_5,\"Foo, Bar\",,,,,5,文學\n"

	w := &fakeWriter{}
	run, err := newPipeline(testConfig(), w).Run(context.Background(), NewCSV(strings.NewReader(in)))
	if err != nil {
		t.Fatal(err)
	}
	if want := (models.Stats{Fetched: 4, Processed: 2, Inserted: 2, Failed: 2, Skipped: 1}); run.Stats != want {
		t.Fatalf("stats = %+v", run.Stats)
	}
	want := models.Book{BookID: "OL1M", Name: "Dune", Author: "Frank Herbert", Publisher: "Ace", Price: 42, ISBN: "9780441013593", SourceID: "books/OL1M"}
	if w.books[0] != want {
		t.Fatalf("book 0 = %+v", w.books[0])
	}
	if w.books[1].Name != "Foo, Bar" || w.books[1].Genre != "文學" || w.books[1].SourceID != "5" {
		t.Fatalf("book 1 = %+v", w.books[1])
	}

	_, err = newPipeline(testConfig(), &fakeWriter{}).Run(context.Background(), NewCSV(strings.NewReader("title\nx\n")))
	if err == nil {
		t.Fatal("missing book_id column should fail")
	}
}
