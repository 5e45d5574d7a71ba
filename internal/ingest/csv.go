package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bookseed/pkg/models"
)

// CSV replays a saved book table (an export or a store dump) through the
// pipeline. Recognized columns: book_id, name, author, publisher, price,
// isbn, source_id, source_url, genre. book_id and name are required.
type CSV struct {
	r io.Reader
}

func NewCSV(r io.Reader) *CSV { return &CSV{r: r} }

func (s *CSV) Name() string { return models.SourceCSV }

func (s *CSV) Discover(ctx context.Context, f *Frontier) error {
	r := csv.NewReader(s.r)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for _, col := range []string{"book_id", "name"} {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; !f.Full(); line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) == 0 {
			continue
		}

		raw := &models.RawBook{
			Source:    models.SourceCSV,
			Key:       valueAt(header, row, "book_id"),
			ProductID: valueAt(header, row, "source_id"),
			URL:       valueAt(header, row, "source_url"),
			Title:     valueAt(header, row, "name"),
			Author:    models.AuthorRef{Name: valueAt(header, row, "author")},
			Publisher: valueAt(header, row, "publisher"),
			Price:     valueAt(header, row, "price"),
			ISBN:      valueAt(header, row, "isbn"),
			Category:  valueAt(header, row, "genre"),
		}
		f.Offer(Candidate{ID: raw.Key, ISBN: raw.ISBN, Title: raw.Title, Raw: raw})
	}
	return nil
}

func (s *CSV) Fetch(_ context.Context, c Candidate) (models.RawBook, bool) {
	if c.Raw == nil {
		return models.RawBook{}, false
	}
	return *c.Raw, true
}

// readHeader maps lowercased column names to positions. A UTF-8 BOM on
// the first name is ignored.
func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		name = strings.TrimPrefix(name, "\ufeff")
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
