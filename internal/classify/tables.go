package classify

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bookseed/pkg/models"
)

const bom = "\ufeff"

// Output file names written by WriteTables.
const (
	CategoriesFile   = "categories.csv"
	BookCategoryFile = "book_category.csv"
)

// ErrMissingColumn is returned when book_id or name is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// ReadBooks parses an exported book CSV. A leading BOM is skipped and
// columns are located by header name.
func ReadBooks(r io.Reader) ([]models.Book, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, bom))] = i
	}
	for _, col := range []string{"book_id", "name"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	field := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var books []models.Book
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return books, fmt.Errorf("read row %d: %w", len(books)+2, err)
		}
		b := models.Book{
			BookID:    field(rec, "book_id"),
			Name:      field(rec, "name"),
			Author:    field(rec, "author"),
			Publisher: field(rec, "publisher"),
		}
		if p := field(rec, "price"); p != "" {
			b.Price, _ = strconv.ParseFloat(p, 64)
		}
		books = append(books, b)
	}
	return books, nil
}

// Assign sets Category on every book and returns the per-category counts.
func (c *Classifier) Assign(books []models.Book) map[int]int {
	counts := make(map[int]int)
	for i := range books {
		books[i].Category = c.Classify(books[i].Name)
		counts[books[i].Category]++
	}
	return counts
}

// WriteTables writes categories.csv and book_category.csv into dir.
func (c *Classifier) WriteTables(dir string, books []models.Book) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	cats := [][]string{{"category_id", "name"}}
	for _, cat := range c.categories {
		cats = append(cats, []string{strconv.Itoa(cat.ID), cat.Name})
	}
	if err := writeFile(filepath.Join(dir, CategoriesFile), cats); err != nil {
		return err
	}

	links := [][]string{{"book_id", "category_id"}}
	for _, b := range books {
		links = append(links, []string{b.BookID, strconv.Itoa(b.Category)})
	}
	return writeFile(filepath.Join(dir, BookCategoryFile), links)
}

func writeFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.WriteString(f, bom); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
