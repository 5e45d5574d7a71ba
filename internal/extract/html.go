package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is one product link found on a category or search page.
type Listing struct {
	ProductID string
	URL       string
	Title     string
}

var (
	isbn13Labeled = regexp.MustCompile(`ISBN[：:\s]*(\d{13})`)
	isbn10Labeled = regexp.MustCompile(`ISBN[：:\s]*(\d{9}[\dXx])`)
	isbn13Bare    = regexp.MustCompile(`\b(97[89]\d{10})\b`)
	hasDigit      = regexp.MustCompile(`\d`)
)

func parseHTML(b []byte) (*goquery.Document, bool) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, false
	}
	doc.Find("script, style, noscript").Remove()
	return doc, true
}

// squash collapses whitespace; extractors hand back tidy text so that
// label stripping and selector fallbacks see the same thing the normalizer will.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstText returns the text of the first selector that matches a
// non-empty element after trimming the given label prefix.
func firstText(doc *goquery.Document, selectors []string, label *regexp.Regexp) string {
	for _, sel := range selectors {
		s := squash(doc.Find(sel).First().Text())
		if label != nil {
			s = strings.TrimSpace(label.ReplaceAllString(s, ""))
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// firstMatching is firstText restricted to values accepted by keep.
func firstMatching(doc *goquery.Document, selectors []string, keep func(string) bool) string {
	for _, sel := range selectors {
		s := squash(doc.Find(sel).First().Text())
		if s != "" && keep(s) {
			return s
		}
	}
	return ""
}

// labeled returns the first capture of re in text.
func labeled(text string, re *regexp.Regexp) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// findISBN prefers labeled 13-digit, then labeled 10-digit, then any
// bare EAN-13 book code in text.
func findISBN(text string) string {
	for _, re := range []*regexp.Regexp{isbn13Labeled, isbn10Labeled, isbn13Bare} {
		if v := labeled(text, re); v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}

// absolute resolves href against base; unparsable hrefs are returned as is.
func absolute(base, href string) string {
	href = strings.TrimSpace(href)
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	r, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(r).String()
}
