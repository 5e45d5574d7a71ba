package ingest

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"bookseed/internal/extract"
	"bookseed/internal/fetch"
	"bookseed/internal/ident"
	"bookseed/internal/logging"
	"bookseed/pkg/models"
)

// shop is the category-browsing source shared by the e-commerce sites.
type shop struct {
	name     string
	tag      string
	patterns []*regexp.Regexp
	cfg      ShopConfig
	get      fetch.Getter

	listing   func(html []byte) []extract.Listing
	detail    func(html []byte, pageURL string) models.RawBook
	detailURL func(l extract.Listing) string
	pageURL   func(categoryURL string, page int) string
}

// NewBooksComTW browses books.com.tw category pages.
func NewBooksComTW(cfg ShopConfig, get fetch.Getter) Source {
	return &shop{
		name:     models.SourceBooksComTW,
		tag:      ident.TagBooksComTW,
		patterns: ident.BooksComTWPatterns,
		cfg:      cfg,
		get:      get,
		listing:  extract.BooksComTWListing,
		detail:   extract.BooksComTWDetail,
		detailURL: func(l extract.Listing) string {
			return extract.BooksComTWDetailURL(l.ProductID)
		},
		pageURL: func(u string, page int) string { return withPage(u, page, true) },
	}
}

// NewEslite browses eslite category pages. Page 1 is the bare category url.
func NewEslite(cfg ShopConfig, get fetch.Getter) Source {
	return &shop{
		name:      models.SourceEslite,
		tag:       ident.TagEslite,
		patterns:  ident.EslitePatterns,
		cfg:       cfg,
		get:       get,
		listing:   extract.EsliteListing,
		detail:    extract.EsliteDetail,
		detailURL: func(l extract.Listing) string { return l.URL },
		pageURL:   func(u string, page int) string { return withPage(u, page, false) },
	}
}

func (s *shop) Name() string { return s.name }

func (s *shop) Discover(ctx context.Context, f *Frontier) error {
	log := logging.WithPrefix(s.name)
	for _, cat := range s.cfg.Categories {
		if f.Full() {
			break
		}
		got := 0
		for page := 1; page <= s.cfg.MaxPages && !f.Full(); page++ {
			if cat.Max > 0 && got >= cat.Max {
				break
			}
			html, ok := s.get.Get(ctx, s.pageURL(cat.URL, page), nil)
			if !ok {
				break
			}
			listings := s.listing(html)
			if len(listings) == 0 {
				break
			}

			fresh := 0
			for _, l := range listings {
				if cat.Max > 0 && got >= cat.Max {
					break
				}
				pid := l.ProductID
				if pid == "" {
					pid = ident.ProductID(l.URL, s.patterns...)
				}
				l.ProductID = pid
				c := Candidate{
					ID:    ident.Tagged(s.tag, pid),
					Key:   pid,
					URL:   s.detailURL(l),
					Title: l.Title,
					Genre: cat.Name,
				}
				if f.Offer(c) {
					fresh++
					got++
				}
			}
			log.Debug("listing page", "category", cat.Name, "page", page, "found", len(listings), "new", fresh)
			if fresh == 0 {
				break
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Info("category done", "category", cat.Name, "new", got)
	}
	return nil
}

func (s *shop) Fetch(ctx context.Context, c Candidate) (models.RawBook, bool) {
	html, ok := s.get.Get(ctx, c.URL, nil)
	if !ok {
		return models.RawBook{}, false
	}
	raw := s.detail(html, c.URL)
	raw.ProductID = c.Key
	if raw.Title == "" {
		raw.Title = c.Title
	}
	if raw.Category == "" {
		raw.Category = c.Genre
	}
	return raw, true
}

// withPage sets the page query parameter. When keepFirst is false, page 1
// is the url unchanged.
func withPage(raw string, page int, keepFirst bool) string {
	if page == 1 && !keepFirst {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
