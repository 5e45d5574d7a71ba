package extract

import (
	"strings"

	"bookseed/internal/ident"
	"bookseed/pkg/models"
)

// OpenLibrary maps an edition, work, data-API or search document into a
// RawBook. The url is left for the caller, which knows the endpoint.
func OpenLibrary(doc Record) models.RawBook {
	raw := models.RawBook{Source: models.SourceOpenLibrary}
	raw.Key, _ = doc.String("key")
	raw.Title, _ = doc.String("title")
	raw.Author = openLibraryAuthor(doc)
	raw.Publisher = openLibraryPublisher(doc)
	raw.ISBN = openLibraryISBN(doc)
	raw.Price, _ = doc.String("price")
	if subj, ok := doc.FirstObject("subjects"); ok {
		raw.Category, _ = subj.String("name")
	} else {
		raw.Category, _ = doc.FirstString("subjects")
	}
	return raw
}

// openLibraryAuthor handles the three author shapes: {name}, {author: {key}}
// on works, and bare {key} on editions. Search docs carry author_name.
func openLibraryAuthor(doc Record) models.AuthorRef {
	if a, ok := doc.FirstObject("authors"); ok {
		if name, ok := a.String("name"); ok {
			return models.AuthorRef{Name: name}
		}
		if nested, ok := a.Object("author"); ok {
			if key, ok := nested.String("key"); ok {
				return models.AuthorRef{Key: key}
			}
		}
		if key, ok := a.String("key"); ok {
			return models.AuthorRef{Key: key}
		}
	}
	if name, ok := doc.FirstString("author_name", "author"); ok {
		return models.AuthorRef{Name: name}
	}
	return models.AuthorRef{}
}

func openLibraryPublisher(doc Record) string {
	if p, ok := doc.FirstObject("publishers"); ok {
		if name, ok := p.String("name"); ok {
			return name
		}
		if key, ok := p.String("key"); ok {
			if seg := ident.FromKey(key); seg != "" {
				return seg
			}
			return strings.TrimSpace(key)
		}
	}
	if name, ok := doc.FirstString("publishers", "publisher"); ok {
		return name
	}
	return ""
}

func openLibraryISBN(doc Record) string {
	if isbn, ok := doc.FirstString("isbn_13", "isbn_10", "isbn"); ok {
		return isbn
	}
	if ids, ok := doc.Object("identifiers"); ok {
		if isbn, ok := ids.FirstString("isbn_13", "isbn_10"); ok {
			return isbn
		}
	}
	return ""
}

// SearchHit is one candidate from a search.json page.
type SearchHit struct {
	Key   string // edition key when known, else the work key
	Title string
	ISBN  string
}

// OpenLibrarySearch reads the docs of a search.json response.
func OpenLibrarySearch(body Record) []SearchHit {
	docs := body.Objects("docs")
	out := make([]SearchHit, 0, len(docs))
	for _, d := range docs {
		h := SearchHit{}
		h.Title, _ = d.String("title")
		h.ISBN, _ = d.FirstString("isbn", "isbn_13", "isbn_10")
		if ed, ok := d.FirstString("edition_key"); ok {
			h.Key = "/books/" + ed
		} else {
			h.Key, _ = d.String("key")
		}
		if h.Key == "" && h.ISBN == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}

// OpenLibraryAuthorName reads the display name of an /authors/ID.json document.
func OpenLibraryAuthorName(doc Record) (string, bool) {
	return doc.String("name", "personal_name")
}
