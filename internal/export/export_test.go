package export

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"bookseed/pkg/models"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"深入理解系統【暢銷紀念版】：完整解析", "深入理解系統"},
		{"原子習慣 (第2版)", "原子習慣"},
		{"深入理解 [精裝] 系統", "深入理解 系統"},
		{"「被討厭的勇氣」『套書』", ""},
		{"Dune: Deluxe Edition", "Dune"},
		{"  Neuromancer   (1984)  ", "Neuromancer"},
		{"書名。", "書名"},
		{"書名、，", "書名"},
		{"（全新修訂第三版）標題", "標題"},
		{"Plain Title", "Plain Title"},
	}
	for _, c := range cases {
		if got := CleanTitle(c.in); got != c.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanAuthor(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		in, want string
	}{
		{"王小明、李小華 合著", "王小明"},
		{"John Smith, Jane Doe", "John Smith"},
		{"村上春樹／賴明珠", "村上春樹"},
		{"A/B，C", "A"},
		{"王大明 編著", "王大明"},
		{"譯者：某某", ""},
		{"◎王 等", ""},
		{"  Frank Herbert ", "Frank Herbert"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanAuthor(c.in, cfg.AuthorIndicators, cfg.AuthorSeparators); got != c.want {
			t.Errorf("CleanAuthor(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPrepareEndToEnd(t *testing.T) {
	long := strings.Repeat("出", 80)
	in := []models.Book{
		{BookID: "OL1M", Name: "Foo Bar", Author: "王小明、李小華 合著", Publisher: "天下文化", Price: 999},
		{BookID: "BOOKS_COM_TW_1", Name: "  foo   bar  ", Publisher: "遠流"},
		{BookID: "ESLITE_1", Name: "深入理解系統【暢銷紀念版】：完整解析", Publisher: long},
		{BookID: "ESLITE_2", Name: "【贈品】", Publisher: "新功能介紹"},
		{BookID: "ESLITE_3", Name: "Neuromancer"},
	}
	out, rep := New(DefaultConfig(), seeded()).Prepare(in)

	if rep.Input != 5 || rep.Duplicates != 1 || rep.Removed != 0 || rep.Output != 4 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.PublishersReplaced != 2 {
		t.Fatalf("replaced = %d", rep.PublishersReplaced)
	}

	wantNames := []string{"Foo Bar", "深入理解系統", "Unknown Book 00000003", "Neuromancer"}
	for i, b := range out {
		if b.BookID != seqID(i) {
			t.Errorf("row %d id = %q", i, b.BookID)
		}
		if b.Name != wantNames[i] {
			t.Errorf("row %d name = %q, want %q", i, b.Name, wantNames[i])
		}
		if b.Price < 30 || b.Price > 50 || b.Price != math.Round(b.Price) {
			t.Errorf("row %d price = %v", i, b.Price)
		}
		if runeLen(b.Publisher) > 50 || b.Publisher == "新功能介紹" {
			t.Errorf("row %d publisher = %q", i, b.Publisher)
		}
	}

	if out[0].Author != "王小明" || out[0].Publisher != "天下文化" {
		t.Errorf("row 0 = %+v", out[0])
	}
	if out[1].Publisher != "天下文化" && out[1].Publisher != "遠流" {
		t.Errorf("long publisher replaced by %q", out[1].Publisher)
	}
	if out[3].Author != "Unknown Author" || out[3].Publisher != "Unknown Publisher" {
		t.Errorf("row 3 = %+v", out[3])
	}
	if in[0].BookID != "OL1M" || in[0].Price != 999 {
		t.Error("input was modified")
	}
}

func TestPrepareNumbersFromZero(t *testing.T) {
	out, _ := New(DefaultConfig(), seeded()).Prepare([]models.Book{
		{BookID: "OL9M", Name: "Zeta"},
		{BookID: "BOOKS_COM_TW_1", Name: "Alpha"},
		{BookID: "ESLITE_1", Name: ""},
	})
	want := []struct{ id, name string }{
		{"00000000", "Zeta"},
		{"00000001", "Alpha"},
		{"00000002", "Unknown Book 00000002"},
	}
	if len(out) != len(want) {
		t.Fatalf("out = %+v", out)
	}
	for i, w := range want {
		if out[i].BookID != w.id || out[i].Name != w.name {
			t.Errorf("row %d = %s %q, want %s %q", i, out[i].BookID, out[i].Name, w.id, w.name)
		}
	}
}

func TestPrepareNoValidPublisher(t *testing.T) {
	out, _ := New(DefaultConfig(), seeded()).Prepare([]models.Book{
		{BookID: "a", Name: "A", Publisher: "新功能介紹"},
		{BookID: "b", Name: "B", Publisher: strings.Repeat("x", 51)},
	})
	for _, b := range out {
		if b.Publisher != "Unknown Publisher" {
			t.Fatalf("publisher = %q", b.Publisher)
		}
	}
}

func TestPrepareDropsOversized(t *testing.T) {
	cfg := DefaultConfig()
	out, rep := New(cfg, seeded()).Prepare([]models.Book{
		{BookID: "a", Name: strings.Repeat("長", 151)},
		{BookID: "b", Name: "ok", Author: strings.Repeat("作", 61)},
		{BookID: "c", Name: strings.Repeat("長", 150), Author: strings.Repeat("作", 60)},
	})
	if rep.Removed != 2 || len(out) != 1 || out[0].BookID != "00000000" {
		t.Fatalf("out = %+v rep = %+v", out, rep)
	}
}

func TestPrepareIsReproducibleWithSeed(t *testing.T) {
	in := []models.Book{
		{BookID: "a", Name: "A", Publisher: "P1"},
		{BookID: "b", Name: "B", Publisher: "P2"},
		{BookID: "c", Name: "C", Publisher: "新功能介紹"},
	}
	a, _ := New(DefaultConfig(), seeded()).Prepare(in)
	b, _ := New(DefaultConfig(), seeded()).Prepare(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPriceCents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PriceRounding = RoundCents
	cfg.PriceMin, cfg.PriceMax = 305, 305
	e := New(cfg, seeded())
	if p := e.price(); math.Abs(p-30.5) > 1e-9 {
		t.Fatalf("price = %v", p)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.Book{
		{BookID: "00000001", Name: "Dune, Deluxe", Author: `Frank "F" Herbert`, Publisher: "Ace", Price: 42},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := BOM + "book_id,name,author,publisher,price\n" +
		`00000001,"Dune, Deluxe","Frank ""F"" Herbert",Ace,42` + "\n"
	if buf.String() != want {
		t.Fatalf("csv =\n%q\nwant\n%q", buf.String(), want)
	}
}

type fakeReader struct {
	books []models.Book
	err   error
}

func (f fakeReader) All(context.Context) ([]models.Book, error) { return f.books, f.err }

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	rep, err := New(DefaultConfig(), seeded()).Run(context.Background(), fakeReader{books: []models.Book{
		{BookID: "OL1M", Name: "Dune"},
	}}, &buf)
	if err != nil || rep.Output != 1 {
		t.Fatalf("rep = %+v err = %v", rep, err)
	}
	if !strings.HasPrefix(buf.String(), BOM+"book_id,") || !strings.Contains(buf.String(), "00000000,Dune,Unknown Author,Unknown Publisher,") {
		t.Fatalf("csv = %q", buf.String())
	}

	boom := errors.New("boom")
	if _, err := New(DefaultConfig(), seeded()).Run(context.Background(), fakeReader{err: boom}, &buf); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
