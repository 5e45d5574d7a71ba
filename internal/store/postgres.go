package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookseed/pkg/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS books (
  book_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  author TEXT,
  publisher TEXT,
  price NUMERIC DEFAULT 0,
  isbn TEXT,
  source_id TEXT,
  source_url TEXT,
  genre TEXT,
  created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);
CREATE INDEX IF NOT EXISTS idx_books_source_id ON books(source_id);

CREATE TABLE IF NOT EXISTS ingest_runs (
  run_id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  started_at TIMESTAMPTZ NOT NULL,
  finished_at TIMESTAMPTZ NOT NULL,
  fetched INTEGER NOT NULL DEFAULT 0,
  processed INTEGER NOT NULL DEFAULT 0,
  inserted INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  failed INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0
);
`

// insertIfAbsent skips on a book_id conflict and when the isbn is already stored.
const insertIfAbsent = `
INSERT INTO books (book_id, name, author, publisher, price, isbn, source_id, source_url, genre)
SELECT $1::text, $2::text, $3::text, $4::text, $5::numeric, $6::text, $7::text, $8::text, $9::text
WHERE NOT EXISTS (SELECT 1 FROM books WHERE isbn = $6::text)
ON CONFLICT (book_id) DO NOTHING`

// Postgres is the server-side store, backed by a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn and pings it.
func OpenPostgres(ctx context.Context, dsn string, maxConns int) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 2
	}
	cfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *Postgres) Exists(ctx context.Context, bookID, isbn string) (bool, error) {
	var exists bool
	err := p.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM books WHERE book_id = $1 OR ($2::text IS NOT NULL AND isbn = $2::text))
	`, bookID, nullable(isbn)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", bookID, err)
	}
	return exists, nil
}

// InsertBatch queues one insert-if-absent per book and sends them as a
// single batch; statements run in order inside one implicit transaction.
func (p *Postgres) InsertBatch(ctx context.Context, books []models.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, bk := range books {
		b.Queue(insertIfAbsent,
			bk.BookID,
			bk.Name,
			nullable(bk.Author),
			nullable(bk.Publisher),
			bk.Price,
			nullable(bk.ISBN),
			nullable(bk.SourceID),
			nullable(bk.SourceURL),
			nullable(bk.Genre),
		)
	}

	br := p.Pool.SendBatch(ctx, b)
	total := 0
	for range books {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("batch insert: %w", err)
		}
		total += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}
	return total, nil
}

func (p *Postgres) Identifiers(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.Pool.Query(ctx, `SELECT book_id, COALESCE(isbn, '') FROM books`)
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

func (p *Postgres) All(ctx context.Context) ([]models.Book, error) {
	return p.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY book_id ASC`)
}

func (p *Postgres) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true, postgresPlaceholder)
	var total int
	if err := p.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (p *Postgres) List(ctx context.Context, q ListQuery) ([]models.Book, error) {
	sqlStr, args := buildListSQL(q, false, postgresPlaceholder)
	return p.query(ctx, sqlStr, args...)
}

func (p *Postgres) Get(ctx context.Context, bookID string) (*models.Book, error) {
	row := p.Pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE book_id = $1`, bookID)
	b, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan get: %w", err)
	}
	return &b, nil
}

func (p *Postgres) RecordRun(ctx context.Context, run models.Run) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO ingest_runs (run_id, source, started_at, finished_at, fetched, processed, inserted, duplicates, failed, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, run.Source, run.StartedAt, run.FinishedAt,
		run.Fetched, run.Processed, run.Inserted, run.Duplicates, run.Failed, run.Skipped)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

func (p *Postgres) Runs(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.Pool.Query(ctx, `
		SELECT run_id, source, started_at, finished_at, fetched, processed, inserted, duplicates, failed, skipped
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("runs query: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}

func (p *Postgres) query(ctx context.Context, sqlStr string, args ...any) ([]models.Book, error) {
	rows, err := p.Pool.Query(ctx, sqlStr, args...)
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

func postgresPlaceholder(n int) string { return "$" + strconv.Itoa(n) }
