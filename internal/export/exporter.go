// Package export turns the stored catalog into the seed CSV consumed by
// the rental-bookstore application.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"bookseed/internal/dedupe"
	"bookseed/internal/logging"
	"bookseed/pkg/models"
)

// Header is the column order of the exported file.
var Header = []string{"book_id", "name", "author", "publisher", "price"}

// BOM marks the file as UTF-8 for spreadsheet tools.
const BOM = "\ufeff"

// Reader is the part of the store the exporter reads from.
type Reader interface {
	All(ctx context.Context) ([]models.Book, error)
}

// Report summarizes one export.
type Report struct {
	Input              int `json:"input"`
	PublishersReplaced int `json:"publishers_replaced"`
	Removed            int `json:"removed"`    // over the name or author length cap
	Duplicates         int `json:"duplicates"` // dropped by name dedupe
	Output             int `json:"output"`
}

// Exporter applies the cleanup rules. Rand drives publisher substitution
// and price synthesis; seed it for reproducible output.
type Exporter struct {
	Config Config
	Rand   *rand.Rand
}

// New returns an Exporter. A nil rng is seeded from the clock.
func New(cfg Config, rng *rand.Rand) *Exporter {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Exporter{Config: cfg, Rand: rng}
}

// Prepare cleans, filters, dedupes and renumbers books. The input slice
// is not modified.
func (e *Exporter) Prepare(books []models.Book) ([]models.Book, Report) {
	rep := Report{Input: len(books)}
	log := logging.WithPrefix("export")
	valid := e.validPublishers(books)

	cleaned := make([]models.Book, 0, len(books))
	for i, b := range books {
		out := models.Book{BookID: seqID(i)}

		var replaced bool
		out.Publisher, replaced = e.publisher(b.Publisher, valid)
		if replaced {
			rep.PublishersReplaced++
		}

		out.Author = CleanAuthor(b.Author, e.Config.AuthorIndicators, e.Config.AuthorSeparators)
		if out.Author == "" {
			out.Author = e.Config.UnknownAuthor
		}

		out.Name = CleanTitle(b.Name)
		if out.Name == "" {
			out.Name = e.Config.UnknownBookPrefix + out.BookID
		}

		out.Price = e.price()

		if runeLen(out.Name) > e.Config.NameMaxLen || runeLen(out.Author) > e.Config.AuthorMaxLen {
			rep.Removed++
			log.Debug("dropping oversized record", "book_id", b.BookID, "name_len", runeLen(out.Name), "author_len", runeLen(out.Author))
			continue
		}
		cleaned = append(cleaned, out)
	}

	kept, dups := dedupe.ByName(cleaned)
	rep.Duplicates = dups
	for i := range kept {
		kept[i].BookID = seqID(i)
	}
	rep.Output = len(kept)
	return kept, rep
}

// Run reads every stored book and writes the cleaned CSV to w.
func (e *Exporter) Run(ctx context.Context, src Reader, w io.Writer) (Report, error) {
	books, err := src.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read books: %w", err)
	}
	out, rep := e.Prepare(books)
	if err := WriteCSV(w, out); err != nil {
		return rep, err
	}
	return rep, nil
}

// RunToFile is Run writing to path, creating its directory.
func (e *Exporter) RunToFile(ctx context.Context, src Reader, path string) (Report, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Report{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	rep, err := e.Run(ctx, src, f)
	if err != nil {
		return rep, err
	}
	return rep, f.Close()
}

// WriteCSV writes the BOM, the header and one row per book.
func WriteCSV(w io.Writer, books []models.Book) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, b := range books {
		if err := cw.Write([]string{
			b.BookID,
			b.Name,
			b.Author,
			b.Publisher,
			strconv.FormatFloat(b.Price, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// validPublishers is the sorted set of publishers usable as substitutes.
func (e *Exporter) validPublishers(books []models.Book) []string {
	set := make(map[string]struct{})
	for _, b := range books {
		p := strings.TrimSpace(b.Publisher)
		if p == "" || isPlaceholder(p, e.Config.PlaceholderPublisher) || runeLen(p) > e.Config.PublisherMaxLen {
			continue
		}
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (e *Exporter) publisher(p string, valid []string) (string, bool) {
	p = strings.TrimSpace(p)
	if p == "" {
		return e.Config.UnknownPublisher, false
	}
	if !isPlaceholder(p, e.Config.PlaceholderPublisher) && runeLen(p) <= e.Config.PublisherMaxLen {
		return p, false
	}
	if len(valid) == 0 {
		return e.Config.UnknownPublisher, true
	}
	return valid[e.Rand.IntN(len(valid))], true
}

func (e *Exporter) price() float64 {
	span := e.Config.PriceMax - e.Config.PriceMin + 1
	n := e.Config.PriceMin
	if span > 1 {
		n += e.Rand.IntN(span)
	}
	v := float64(n) * e.Config.PriceFactor
	if e.Config.PriceRounding == RoundCents {
		return math.Round(v*100) / 100
	}
	return math.Round(v)
}

func seqID(n int) string { return fmt.Sprintf("%08d", n) }
