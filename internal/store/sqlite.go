package store

import (
	"context"
	"database/sql"
	"fmt"

	"bookseed/pkg/database"
	"bookseed/pkg/models"
)

// SQLite is the default store, backed by mattn/go-sqlite3.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db}
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := database.Open(database.Config{Path: path})
	if err != nil {
		return nil, err
	}
	return NewSQLite(db), nil
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	return database.Migrate(s.DB)
}

func (s *SQLite) Exists(ctx context.Context, bookID, isbn string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `
		SELECT 1 FROM books
		WHERE book_id = ? OR (? IS NOT NULL AND isbn = ?)
		LIMIT 1
	`, bookID, nullable(isbn), nullable(isbn)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", bookID, err)
	}
	return true, nil
}

// InsertBatch writes books in one transaction. Rows whose book_id or isbn
// is already stored are skipped; the result counts rows actually written.
func (s *SQLite) InsertBatch(ctx context.Context, books []models.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO books (book_id, name, author, publisher, price, isbn, source_id, source_url, genre)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM books WHERE isbn = ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range books {
		isbn := nullable(b.ISBN)
		res, err := stmt.ExecContext(ctx,
			b.BookID,
			b.Name,
			nullable(b.Author),
			nullable(b.Publisher),
			b.Price,
			isbn,
			nullable(b.SourceID),
			nullable(b.SourceURL),
			nullable(b.Genre),
			isbn,
		)
		if err != nil {
			return 0, fmt.Errorf("exec insert for %s: %w", b.BookID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// Identifiers returns every stored book_id and isbn.
func (s *SQLite) Identifiers(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT book_id, COALESCE(isbn, '') FROM books`)
	if err != nil {
		return nil, fmt.Errorf("identifiers query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id, isbn string
		if err := rows.Scan(&id, &isbn); err != nil {
			return nil, fmt.Errorf("identifiers scan: %w", err)
		}
		out[id] = struct{}{}
		if isbn != "" {
			out[isbn] = struct{}{}
		}
	}
	return out, rows.Err()
}

// All returns every stored book ordered by book_id. The exporter keeps
// the first book of each name, so this order picks the survivor.
func (s *SQLite) All(ctx context.Context) ([]models.Book, error) {
	return s.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY book_id ASC`)
}

func (s *SQLite) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true, sqlitePlaceholder)
	var total int
	if err := s.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (s *SQLite) List(ctx context.Context, q ListQuery) ([]models.Book, error) {
	sqlStr, args := buildListSQL(q, false, sqlitePlaceholder)
	return s.query(ctx, sqlStr, args...)
}

// Get returns nil, nil when the book does not exist.
func (s *SQLite) Get(ctx context.Context, bookID string) (*models.Book, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE book_id = ?`, bookID)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan get: %w", err)
	}
	return &b, nil
}

func (s *SQLite) RecordRun(ctx context.Context, run models.Run) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO ingest_runs (run_id, source, started_at, finished_at, fetched, processed, inserted, duplicates, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Fetched, run.Processed, run.Inserted, run.Duplicates, run.Failed, run.Skipped)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLite) Runs(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT run_id, source, started_at, finished_at, fetched, processed, inserted, duplicates, failed, skipped
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("runs query: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

func (s *SQLite) query(ctx context.Context, sqlStr string, args ...any) ([]models.Book, error) {
	rows, err := s.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func sqlitePlaceholder(int) string { return "?" }

type runRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRuns(rows runRows) ([]models.Run, error) {
	var out []models.Run
	for rows.Next() {
		var r models.Run
		if err := rows.Scan(&r.ID, &r.Source, &r.StartedAt, &r.FinishedAt,
			&r.Fetched, &r.Processed, &r.Inserted, &r.Duplicates, &r.Failed, &r.Skipped); err != nil {
			return nil, fmt.Errorf("runs scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
