// Package store persists canonical books with insert-if-absent semantics.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookseed/pkg/database"
	"bookseed/pkg/models"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
	// DSN and MaxConns configure the postgres pool.
	DSN      string `yaml:"dsn" validate:"required_if=Driver postgres"`
	MaxConns int    `yaml:"max_conns"`
}

func DefaultConfig() Config {
	return Config{
		Driver:   DriverSQLite,
		Path:     database.DefaultConfig().Path,
		MaxConns: 4,
	}
}

// ListQuery filters and pages the catalog.
type ListQuery struct {
	Q      string // keyword search in name/author
	Limit  int
	Offset int
}

// Store is the persistence gateway. Writes never update or delete:
// InsertBatch skips any book whose id, or non-empty isbn, is already stored.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Exists(ctx context.Context, bookID, isbn string) (bool, error)
	InsertBatch(ctx context.Context, books []models.Book) (int, error)
	Identifiers(ctx context.Context) (map[string]struct{}, error)
	All(ctx context.Context) ([]models.Book, error) // ordered by book_id
	RecordRun(ctx context.Context, run models.Run) error

	Count(ctx context.Context, q ListQuery) (int, error)
	List(ctx context.Context, q ListQuery) ([]models.Book, error)
	Get(ctx context.Context, bookID string) (*models.Book, error)
	Runs(ctx context.Context, limit int) ([]models.Run, error)

	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		return OpenSQLite(cfg.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.DSN, cfg.MaxConns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// Paging defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageBounds clamps paging the same way for every driver.
func PageBounds(q ListQuery) (int, int) {
	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// buildListSQL builds either COUNT(*) or the SELECT list. ph renders the
// n-th (1-based) placeholder for the driver.
func buildListSQL(q ListQuery, countOnly bool, ph func(int) string) (string, []any) {
	sqlStr := `SELECT ` + bookColumns + ` FROM books`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM books`
	}

	var args []any
	if kw := strings.TrimSpace(q.Q); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		args = append(args, like, like)
		sqlStr += " WHERE (LOWER(name) LIKE " + ph(1) + " OR LOWER(COALESCE(author, '')) LIKE " + ph(2) + ")"
	}

	if !countOnly {
		limit, offset := PageBounds(q)
		args = append(args, limit, offset)
		sqlStr += " ORDER BY name ASC, book_id ASC LIMIT " + ph(len(args)-1) + " OFFSET " + ph(len(args))
	}
	return sqlStr, args
}

const bookColumns = `book_id, name, author, publisher, price, isbn, source_id, source_url, genre`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (models.Book, error) {
	var (
		b                       models.Book
		author, publisher, isbn *string
		srcID, srcURL, genre    *string
		price                   *float64
	)
	if err := r.Scan(&b.BookID, &b.Name, &author, &publisher, &price, &isbn, &srcID, &srcURL, &genre); err != nil {
		return models.Book{}, err
	}
	b.Author = deref(author)
	b.Publisher = deref(publisher)
	b.ISBN = deref(isbn)
	b.SourceID = deref(srcID)
	b.SourceURL = deref(srcURL)
	b.Genre = deref(genre)
	if price != nil {
		b.Price = *price
	}
	return b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
