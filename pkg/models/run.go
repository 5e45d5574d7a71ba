package models

import "time"

// Stats are the counters reported for one ingest run.
type Stats struct {
	Fetched    int `json:"fetched"`    // detail records retrieved
	Processed  int `json:"processed"`  // records that passed normalization and validation
	Inserted   int `json:"inserted"`   // new rows written to the store
	Duplicates int `json:"duplicates"` // skipped by the store as already present
	Failed     int `json:"failed"`     // fetch, parse or validation failures
	Skipped    int `json:"skipped"`    // candidates dropped before fetching
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Fetched += o.Fetched
	s.Processed += o.Processed
	s.Inserted += o.Inserted
	s.Duplicates += o.Duplicates
	s.Failed += o.Failed
	s.Skipped += o.Skipped
}

// Run records one ingest run in the store.
type Run struct {
	ID         string    `json:"run_id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Stats
}
