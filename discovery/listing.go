package discovery

import (
	"net/url"
	"strings"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/document"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
)

// Listing is what one archive page yields.
type Listing struct {
	Stubs       []newsfeed.ArticleStub
	HasNextPage bool
}

// ParseListing extracts article stubs from a listing page. Entries without a
// title anchor, an href or title text are skipped. A date that does not parse
// is left nil rather than dropping the entry.
func ParseListing(doc document.Node, baseURL string, cfg scraper.ListingConfig) Listing {
	listing := Listing{
		Stubs: []newsfeed.ArticleStub{},
	}

	for _, entry := range doc.FindAll(cfg.EntrySelector) {
		stub, ok := parseEntry(entry, baseURL, cfg)
		if !ok {
			continue
		}
		listing.Stubs = append(listing.Stubs, stub)
	}

	if cfg.NextSelector != "" {
		_, listing.HasNextPage = doc.FindContainer(cfg.NextSelector)
	}

	return listing
}

func parseEntry(entry document.Node, baseURL string, cfg scraper.ListingConfig) (newsfeed.ArticleStub, bool) {
	anchor, ok := entry.FindContainer(cfg.TitleSelector)
	if !ok {
		return newsfeed.ArticleStub{}, false
	}

	href, ok := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return newsfeed.ArticleStub{}, false
	}

	title := document.NormalizeSpace(anchor.Text())
	if title == "" {
		return newsfeed.ArticleStub{}, false
	}

	link, err := ResolveLink(baseURL, href)
	if err != nil {
		return newsfeed.ArticleStub{}, false
	}

	stub := newsfeed.ArticleStub{
		Title: title,
		Link:  link,
	}

	if cfg.SummarySelector != "" {
		if summary, ok := entry.FindContainer(cfg.SummarySelector); ok {
			stub.Summary = document.NormalizeSpace(summary.Text())
		}
	}

	stub.Date = parseEntryDate(entry, cfg)

	return stub, true
}

func parseEntryDate(entry document.Node, cfg scraper.ListingConfig) *newsfeed.Date {
	if cfg.DateSelector == "" {
		return nil
	}
	node, ok := entry.FindContainer(cfg.DateSelector)
	if !ok {
		return nil
	}

	// The attribute is tried first, then the element text
	var candidates []string
	if cfg.DateAttr != "" {
		if value, ok := node.Attr(cfg.DateAttr); ok {
			candidates = append(candidates, value)
		}
	}
	candidates = append(candidates, node.Text())

	for _, text := range candidates {
		if date, err := newsfeed.ParseDate(text, cfg.DateLayouts...); err == nil {
			return &date
		}
	}
	return nil
}

// ResolveLink makes href absolute against base. A path starting with "/" is
// appended to base without its trailing slash, absolute links are returned
// unchanged and anything else uses standard reference resolution.
func ResolveLink(base, href string) (string, error) {
	href = strings.TrimSpace(href)

	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	// Protocol-relative
	if strings.HasPrefix(href, "//") {
		scheme := baseURL.Scheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + ":" + href, nil
	}

	if strings.HasPrefix(href, "/") {
		return strings.TrimRight(base, "/") + href, nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
