package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"

	"bookseed/internal/dedupe"
	"bookseed/internal/logging"
	"bookseed/internal/normalize"
	"bookseed/internal/validate"
	"bookseed/pkg/models"
)

// Writer is the part of the store the pipeline needs.
type Writer interface {
	Identifiers(ctx context.Context) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, books []models.Book) (int, error)
	RecordRun(ctx context.Context, run models.Run) error
}

// Pipeline runs sources against one store. It is not safe for concurrent use.
type Pipeline struct {
	cfg     Config
	store   Writer
	authors normalize.AuthorLookup
	norm    *normalize.Normalizer

	now   func() time.Time
	newID func() string
}

func NewPipeline(cfg Config, store Writer) *Pipeline {
	authors := normalize.AuthorLookup{}
	return &Pipeline{
		cfg:     cfg,
		store:   store,
		authors: authors,
		norm:    normalize.New(authors),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Authors is the author cache shared across runs of this pipeline.
func (p *Pipeline) Authors() normalize.AuthorLookup { return p.authors }

// Run discovers, fetches and stores new records from src. The run is
// recorded in the store even when it ends with an error. Cancelling ctx
// discards the pending batch; already inserted rows stay.
func (p *Pipeline) Run(ctx context.Context, src Source) (run models.Run, err error) {
	log := logging.WithPrefix("ingest").With("source", src.Name())
	run = models.Run{ID: p.newID(), Source: src.Name(), StartedAt: p.now()}

	defer func() {
		run.FinishedAt = p.now()
		if rerr := p.store.RecordRun(context.WithoutCancel(ctx), run); rerr != nil {
			log.Warn("could not record run", "run_id", run.ID, "err", rerr)
		}
	}()

	ids, err := p.store.Identifiers(ctx)
	if err != nil {
		return run, fmt.Errorf("load identifiers: %w", err)
	}
	seen := dedupe.NewSeen(ids)
	log.Info("loaded existing identifiers", "count", seen.Len())

	frontier := NewFrontier(seen, p.cfg.Target)
	if err := src.Discover(ctx, frontier); err != nil {
		run.Skipped = frontier.Skipped()
		return run, fmt.Errorf("discover: %w", err)
	}
	candidates := frontier.Candidates()
	run.Skipped = frontier.Skipped()
	log.Info("discovery complete", "candidates", len(candidates), "skipped", run.Skipped)

	resolver, _ := src.(AuthorResolver)
	batch := make([]models.Book, 0, p.cfg.BatchSize)

	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		raw, ok := src.Fetch(ctx, c)
		if !ok {
			if ctx.Err() != nil {
				break
			}
			run.Failed++
			log.Debug("fetch failed", "id", c.ID, "url", c.URL)
			continue
		}
		run.Fetched++

		if resolver != nil {
			resolver.ResolveAuthors(ctx, raw, p.authors)
		}
		book, ok := p.norm.Normalize(raw)
		if !ok {
			run.Failed++
			log.Debug("unusable record", "id", c.ID, "title", raw.Title)
			continue
		}
		if err := validate.Book(book); err != nil {
			run.Failed++
			log.Debug("invalid record", "id", book.BookID, "err", err)
			continue
		}
		run.Processed++
		batch = append(batch, book)

		if len(batch) >= p.cfg.BatchSize {
			p.flush(ctx, batch, &run.Stats)
			batch = batch[:0]
			log.Info("progress", "done", i+1, "total", len(candidates), "inserted", run.Inserted)
		}
	}

	if err := ctx.Err(); err != nil {
		if len(batch) > 0 {
			log.Warn("interrupted, discarding pending batch", "records", len(batch))
		}
		return run, err
	}
	if len(batch) > 0 {
		p.flush(ctx, batch, &run.Stats)
	}
	log.Info("run complete", "inserted", run.Inserted, "duplicates", run.Duplicates, "failed", run.Failed)
	return run, nil
}

// flush inserts one batch, retrying the whole batch on error. A batch
// that still fails counts every record as failed.
func (p *Pipeline) flush(ctx context.Context, batch []models.Book, stats *models.Stats) {
	log := logging.WithPrefix("ingest")
	var lastErr error
	for attempt := 0; attempt <= p.cfg.InsertRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				stats.Failed += len(batch)
				return
			case <-time.After(p.cfg.InsertRetryDelay):
			}
		}
		n, err := p.store.InsertBatch(ctx, batch)
		if err == nil {
			stats.Inserted += n
			stats.Duplicates += len(batch) - n
			return
		}
		lastErr = err
		log.Warn("batch insert failed", "attempt", attempt+1, "records", len(batch), "err", err)
	}
	log.Error("giving up on batch", "records", len(batch), "err", lastErr)
	stats.Failed += len(batch)
}

// Summary renders a run as a table.
func Summary(w io.Writer, runs ...models.Run) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("source", "fetched", "processed", "inserted", "duplicates", "failed", "skipped", "took")
	var total models.Stats
	for _, r := range runs {
		total.Add(r.Stats)
		t.Row(r.Source,
			strconv.Itoa(r.Fetched), strconv.Itoa(r.Processed), strconv.Itoa(r.Inserted),
			strconv.Itoa(r.Duplicates), strconv.Itoa(r.Failed), strconv.Itoa(r.Skipped),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String())
	}
	if len(runs) > 1 {
		t.Row("total",
			strconv.Itoa(total.Fetched), strconv.Itoa(total.Processed), strconv.Itoa(total.Inserted),
			strconv.Itoa(total.Duplicates), strconv.Itoa(total.Failed), strconv.Itoa(total.Skipped), "")
	}
	fmt.Fprintln(w, t.Render())
}
