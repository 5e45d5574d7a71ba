// Package normalize turns best-effort extracted fields into canonical books.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"bookseed/internal/ident"
	"bookseed/pkg/models"
)

// AuthorLookup resolves author reference keys (e.g. "/authors/OL1A") to names.
type AuthorLookup map[string]string

// DefaultPlaceholders are values sources emit in place of a missing field.
var DefaultPlaceholders = []string{"-", "--", "N/A", "無", "暫無資料", "不明"}

var (
	labelPrefix = regexp.MustCompile(`^(?:作者|著者|出版社|出版|Author|Publisher)\s*[：:]\s*`)
	priceNoise  = strings.NewReplacer("特價", "", "定價", "", "售價", "", "優惠價", "", "NT$", "", "NT", "", "元", "", "$", "", ",", "", " ", "")
	firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	isbnShape   = regexp.MustCompile(`^(?:\d{13}|\d{9}[\dX])$`)
)

// CleanText applies NFC and collapses every whitespace run to one space.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// ParsePrice reads the first number out of s after stripping currency
// labels. Anything unparsable is 0.
func ParsePrice(s string) float64 {
	s = priceNoise.Replace(strings.TrimSpace(s))
	m := firstNumber.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// CleanISBN strips separators and returns the ISBN only if it has the
// shape of an ISBN-10 or ISBN-13.
func CleanISBN(s string) string {
	s = strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s)))
	if !isbnShape.MatchString(s) {
		return ""
	}
	return s
}

// Normalizer assembles canonical records. Authors is consulted for
// author references that carry only a key.
type Normalizer struct {
	Authors      AuthorLookup
	Placeholders []string
}

// New returns a Normalizer with the default placeholder list.
func New(authors AuthorLookup) *Normalizer {
	return &Normalizer{Authors: authors, Placeholders: DefaultPlaceholders}
}

// Normalize returns the canonical record for raw, or false when the
// identifier or the name is empty after cleaning.
func (n *Normalizer) Normalize(raw models.RawBook) (models.Book, bool) {
	id, ok := ident.Assign(raw)
	if !ok {
		return models.Book{}, false
	}

	b := models.Book{
		BookID:    CleanText(id),
		Name:      n.text(raw.Title),
		Author:    n.text(labelPrefix.ReplaceAllString(CleanText(n.ResolveAuthor(raw.Author)), "")),
		Publisher: n.text(labelPrefix.ReplaceAllString(CleanText(raw.Publisher), "")),
		Price:     ParsePrice(raw.Price),
		ISBN:      CleanISBN(raw.ISBN),
		SourceID:  sourceID(raw, id),
		SourceURL: strings.TrimSpace(raw.URL),
		Genre:     n.text(raw.Category),
	}
	if b.BookID == "" || b.Name == "" {
		return models.Book{}, false
	}
	return b, true
}

// ResolveAuthor picks the display name for ref: its own name, then the
// lookup, then the raw key.
func (n *Normalizer) ResolveAuthor(ref models.AuthorRef) string {
	if name := strings.TrimSpace(ref.Name); name != "" {
		return name
	}
	key := strings.TrimSpace(ref.Key)
	if key == "" {
		return ""
	}
	if name, ok := n.Authors[key]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return key
}

func (n *Normalizer) text(s string) string {
	s = CleanText(s)
	for _, p := range n.Placeholders {
		if strings.EqualFold(s, p) {
			return ""
		}
	}
	return s
}

func sourceID(raw models.RawBook, id string) string {
	switch raw.Source {
	case models.SourceOpenLibrary:
		return strings.TrimPrefix(strings.TrimSpace(raw.Key), "/")
	case models.SourceBooksComTW, models.SourceEslite:
		if raw.ProductID != "" {
			return raw.ProductID
		}
		if i := strings.LastIndex(id, "_"); i >= 0 {
			return id[i+1:]
		}
	case models.SourceCSV:
		return strings.TrimSpace(raw.ProductID)
	}
	return ""
}
