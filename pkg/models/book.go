package models

// Book is the canonical, source-agnostic form of a book record
// used by the ingest pipeline, the store and the exporter.
//
// Every source is mapped into RawBook first, normalized into Book,
// and only then written to the store.
type Book struct {
	BookID    string  `json:"book_id" validate:"required"` // source-tagged at ingest, dense %08d at export
	Name      string  `json:"name" validate:"required"`    // title
	Author    string  `json:"author,omitempty"`            // may list several authors before export
	Publisher string  `json:"publisher,omitempty"`
	Price     float64 `json:"price"`                // 0 at ingest
	ISBN      string  `json:"isbn,omitempty"`       // 10 or 13 digits
	SourceID  string  `json:"source_id,omitempty"`  // native id, e.g. "books/OL1M" or a product id
	SourceURL string  `json:"source_url,omitempty"` // page or API url the record came from
	Genre     string  `json:"genre,omitempty"`      // category text scraped from the source
	Category  int     `json:"category,omitempty"`   // classifier output
}

// Source tags used in identifiers and logs.
const (
	SourceOpenLibrary = "openlibrary"
	SourceBooksComTW  = "bookscomtw"
	SourceEslite      = "eslite"
	SourceCSV         = "csv"
)
