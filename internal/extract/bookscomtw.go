package extract

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"bookseed/internal/ident"
	"bookseed/pkg/models"
)

// BooksComTWBase is the site root used to absolutize listing links.
const BooksComTWBase = "https://www.books.com.tw"

var (
	booksListingSelectors = []string{"div.item", "li.item", "div.search_item", "div[class*='item']"}
	booksTitleSelectors   = []string{"h1[itemprop='name']", "h1.title", "div[class*='title'] h1", "h1"}
	booksAuthorSelectors  = []string{"span[itemprop='author']", "div[class*='author']", "a[href*='author']", "span.author"}
	booksPubSelectors     = []string{"span[itemprop='publisher']", "div[class*='publisher']", "a[href*='publisher']", "span.publisher"}
	booksPriceSelectors   = []string{"span[itemprop='price']", "li[class*='price']", "div[class*='price']", "span.price", "strong.price"}
	booksISBNSelectors    = []string{"span[itemprop='isbn']", "div[class*='isbn']", "span.isbn"}

	booksAuthorLabel = regexp.MustCompile(`^作者\s*[：:]\s*`)
	booksPubLabel    = regexp.MustCompile(`^出版(?:社)?\s*[：:]\s*`)
	booksProductHref = regexp.MustCompile(`/products/\d+`)
	isbnDigits       = regexp.MustCompile(`(\d{13}|\d{9}[\dXx])`)
)

// BooksComTWDetailURL is the canonical product page for a product id.
func BooksComTWDetailURL(productID string) string {
	return BooksComTWBase + "/products/" + productID
}

// BooksComTWListing returns the product links on a category page.
func BooksComTWListing(html []byte) []Listing {
	doc, ok := parseHTML(html)
	if !ok {
		return nil
	}

	var anchors []*goquery.Selection
	for _, sel := range booksListingSelectors {
		items := doc.Find(sel)
		if items.Length() == 0 {
			continue
		}
		items.Each(func(_ int, it *goquery.Selection) {
			if a := it.Find("a[href*='/products/']").First(); a.Length() > 0 {
				anchors = append(anchors, a)
			}
		})
		break
	}
	if len(anchors) == 0 {
		doc.Find("a[href*='/products/']").Each(func(_ int, a *goquery.Selection) {
			anchors = append(anchors, a)
		})
	}

	seen := map[string]struct{}{}
	var out []Listing
	for _, a := range anchors {
		href, _ := a.Attr("href")
		if !booksProductHref.MatchString(href) {
			continue
		}
		pid := ident.ProductID(href, ident.BooksComTWPatterns...)
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, Listing{
			ProductID: pid,
			URL:       absolute(BooksComTWBase, href),
			Title:     squash(a.Text()),
		})
	}
	return out
}

// BooksComTWDetail extracts a product page. pageURL is recorded as the
// record's url and is the source of its product id.
func BooksComTWDetail(html []byte, pageURL string) models.RawBook {
	raw := models.RawBook{Source: models.SourceBooksComTW, URL: pageURL}
	doc, ok := parseHTML(html)
	if !ok {
		return raw
	}

	raw.Title = firstText(doc, booksTitleSelectors, nil)
	raw.Author.Name = firstText(doc, booksAuthorSelectors, booksAuthorLabel)
	raw.Publisher = firstText(doc, booksPubSelectors, booksPubLabel)
	raw.Price = firstMatching(doc, booksPriceSelectors, hasDigit.MatchString)

	if v := firstText(doc, booksISBNSelectors, nil); v != "" {
		raw.ISBN = findISBN(v)
		if raw.ISBN == "" {
			raw.ISBN = labeled(v, isbnDigits)
		}
	}
	if raw.ISBN == "" {
		raw.ISBN = findISBN(doc.Text())
	}
	return raw
}
