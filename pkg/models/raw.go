package models

// AuthorRef is an author as a source presents it: either a display
// name, or a reference key that must be resolved against a lookup.
type AuthorRef struct {
	Name string
	Key  string
}

// RawBook is the best-effort output of a field extractor.
// An empty string means the field could not be extracted.
type RawBook struct {
	Source    string
	Key       string // native key, e.g. "/books/OL1M"
	ProductID string // site-native product id
	URL       string
	Title     string
	Author    AuthorRef
	Publisher string
	Price     string // numeric text, possibly with currency noise
	ISBN      string
	Category  string
}
