package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookseed/internal/ident"
	"bookseed/pkg/models"
)

// EsliteBase is the site root used to absolutize listing links.
const EsliteBase = "https://www.eslite.com"

var (
	esliteProductHref = regexp.MustCompile(`(?i)/(?:product|goods|item|book)/`)
	esliteContainers  = []string{
		"div[class*='product']", "div[class*='item']", "div[class*='book']", "div[class*='goods']",
		"li[class*='product']", "li[class*='item']", "article[class*='product']",
		"[data-product-id]", "[data-item-id]",
	}

	esliteTitleSelectors  = []string{"h1[class*='title']", "h1", "div[class*='title'] h1", "div[class*='product-name']", "span[class*='title']"}
	esliteAuthorSelectors = []string{"div[class*='author']", "span[class*='author']", "a[href*='author']", `li:contains("作者")`}
	eslitePubSelectors    = []string{"div[class*='publisher']", "span[class*='publisher']", "a[href*='publisher']", `li:contains("出版社")`}
	eslitePriceSelectors  = []string{"span[class*='price']", "div[class*='price']", "strong[class*='price']", "li[class*='price']"}
	esliteCrumbSelectors  = []string{"nav[class*='breadcrumb'] a", "div[class*='breadcrumb'] a", "span[class*='category']", "a[href*='/category/']"}

	esliteAuthorLabel = regexp.MustCompile(`(?i)^(?:作者|author)\s*[：:]\s*`)
	eslitePubLabel    = regexp.MustCompile(`(?i)^(?:出版社|publisher)\s*[：:]\s*`)

	esliteAuthorText = regexp.MustCompile(`作者[：:]\s*([^\n\r]+)`)
	eslitePubText    = regexp.MustCompile(`出版社[：:]\s*([^\n\r]+)`)
	eslitePriceText  = regexp.MustCompile(`(?:售價|價格|Price)[：:]\s*(?:NT\$)?\s*(\d+(?:,\d+)*(?:\.\d+)?)`)

	crumbNoise = map[string]struct{}{"首頁": {}, "Home": {}, "商品": {}, "Product": {}}
)

// EsliteListing returns the product links on a category page. Direct
// product links win; otherwise the first link of each product container.
func EsliteListing(html []byte) []Listing {
	doc, ok := parseHTML(html)
	if !ok {
		return nil
	}

	var anchors []*goquery.Selection
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, _ := a.Attr("href"); esliteProductHref.MatchString(href) {
			anchors = append(anchors, a)
		}
	})
	if len(anchors) == 0 {
		for _, sel := range esliteContainers {
			items := doc.Find(sel)
			if items.Length() == 0 {
				continue
			}
			items.Each(func(_ int, it *goquery.Selection) {
				a := it.Find("a[href*='/product/'], a[href*='/goods/']").First()
				if a.Length() == 0 {
					a = it.Find("a[href]").First()
				}
				if a.Length() > 0 {
					anchors = append(anchors, a)
				}
			})
			break
		}
	}

	seen := map[string]struct{}{}
	var out []Listing
	for _, a := range anchors {
		href, _ := a.Attr("href")
		if strings.TrimSpace(href) == "" {
			continue
		}
		u := absolute(EsliteBase, href)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, Listing{
			ProductID: ident.ProductID(u, ident.EslitePatterns...),
			URL:       u,
			Title:     squash(a.Text()),
		})
	}
	return out
}

// EsliteDetail extracts a product page. Fields missing from the
// structured markup fall back to labeled text anywhere on the page.
func EsliteDetail(html []byte, pageURL string) models.RawBook {
	raw := models.RawBook{Source: models.SourceEslite, URL: pageURL}
	doc, ok := parseHTML(html)
	if !ok {
		return raw
	}
	text := doc.Text()

	raw.Title = firstText(doc, esliteTitleSelectors, nil)

	raw.Author.Name = firstText(doc, esliteAuthorSelectors, esliteAuthorLabel)
	if raw.Author.Name == "" {
		raw.Author.Name = labeled(text, esliteAuthorText)
	}

	raw.Publisher = firstText(doc, eslitePubSelectors, eslitePubLabel)
	if raw.Publisher == "" {
		raw.Publisher = labeled(text, eslitePubText)
	}

	raw.Price = firstMatching(doc, eslitePriceSelectors, hasDigit.MatchString)
	if raw.Price == "" {
		raw.Price = labeled(text, eslitePriceText)
	}

	for _, sel := range esliteCrumbSelectors {
		found := false
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			c := squash(s.Text())
			if _, noise := crumbNoise[c]; c == "" || noise {
				return true
			}
			raw.Category = c
			found = true
			return false
		})
		if found {
			break
		}
	}

	raw.ISBN = findISBN(text)
	return raw
}
