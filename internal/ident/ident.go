// Package ident derives the stable book identifier for a raw record.
package ident

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"bookseed/pkg/models"
)

// Source tags prefixed to e-commerce product ids.
const (
	TagBooksComTW = "BOOKS_COM_TW"
	TagEslite     = "ESLITE"
)

// hashLen is the number of hex characters kept from the URL digest.
const hashLen = 12

var (
	booksComTWProduct = regexp.MustCompile(`/products/(\d+)`)
	esliteProduct     = regexp.MustCompile(`/(?:product|goods)/(\d+)`)
	esliteSlug        = regexp.MustCompile(`/(?:product|goods)/([^/?#]+)`)
)

// BooksComTWPatterns are tried in order to pull a product id out of a books.com.tw url.
var BooksComTWPatterns = []*regexp.Regexp{booksComTWProduct}

// EslitePatterns are tried in order to pull a product id out of an eslite url.
var EslitePatterns = []*regexp.Regexp{esliteProduct, esliteSlug}

// FromKey returns the last path segment of an OpenLibrary key,
// e.g. "/books/OL1M" -> "OL1M". Keys without a "/" yield "".
func FromKey(key string) string {
	key = strings.TrimSpace(key)
	parts := strings.Split(key, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

// OpenLibrary returns the identifier for a bibliographic record: the key
// segment if present, else "ISBN_"+isbn.
func OpenLibrary(key, isbn string) (string, bool) {
	if id := FromKey(key); id != "" {
		return id, true
	}
	if isbn = strings.TrimSpace(isbn); isbn != "" {
		return "ISBN_" + isbn, true
	}
	return "", false
}

// HashURL is the deterministic fallback product id for urls no pattern matches.
func HashURL(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// ProductID returns the first capture group of the first matching pattern,
// or HashURL(url) when none match.
func ProductID(url string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return HashURL(url)
}

// Tagged joins a source tag and a native product id.
func Tagged(tag, productID string) string {
	return tag + "_" + productID
}

// Assign derives the book id for raw according to its source.
func Assign(raw models.RawBook) (string, bool) {
	switch raw.Source {
	case models.SourceOpenLibrary:
		return OpenLibrary(raw.Key, raw.ISBN)
	case models.SourceBooksComTW:
		return shop(TagBooksComTW, raw, BooksComTWPatterns)
	case models.SourceEslite:
		return shop(TagEslite, raw, EslitePatterns)
	case models.SourceCSV:
		id := strings.TrimSpace(raw.Key)
		return id, id != ""
	default:
		return "", false
	}
}

func shop(tag string, raw models.RawBook, patterns []*regexp.Regexp) (string, bool) {
	pid := strings.TrimSpace(raw.ProductID)
	if pid == "" {
		if strings.TrimSpace(raw.URL) == "" {
			return "", false
		}
		pid = ProductID(raw.URL, patterns...)
	}
	return Tagged(tag, pid), true
}
