package scraper

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/script"
)

// Pagination modes.
const (
	// ModeBounded visits listing pages 1..MaxPages regardless of content.
	ModeBounded = "bounded"
	// ModeFollow visits pages while the listing shows a next link.
	ModeFollow = "follow"
	// ModeDate walks the archive for a single date, following next links.
	ModeDate = "date"
	// ModeFeed reads article stubs from an RSS or Atom feed.
	ModeFeed = "feed"
)

// DefaultBaseURL is the site the extraction heuristics are written for.
const DefaultBaseURL = "https://www.gujaratsamachar.com"

// SiteConfig describes how to crawl one site. It is passed by value and not
// modified after construction.
type SiteConfig struct {
	BaseURL       string        `json:"base_url" yaml:"base_url"`
	ListingConfig ListingConfig `json:"listing_config" yaml:"listing"`
	ArticleConfig ArticleConfig `json:"article_config" yaml:"article"`
	Pagination    Pagination    `json:"pagination" yaml:"pagination"`
}

// ListingConfig defines how to find article stubs on a listing page.
type ListingConfig struct {
	ListingPath     string   `json:"listing_path" yaml:"listing_path"`
	EntrySelector   string   `json:"entry_selector" yaml:"entry_selector"`
	TitleSelector   string   `json:"title_selector" yaml:"title_selector"`
	SummarySelector string   `json:"summary_selector,omitempty" yaml:"summary_selector"`
	DateSelector    string   `json:"date_selector,omitempty" yaml:"date_selector"`
	DateAttr        string   `json:"date_attr,omitempty" yaml:"date_attr"`
	DateLayouts     []string `json:"date_layouts,omitempty" yaml:"date_layouts"` // Go time layouts
	NextSelector    string   `json:"next_selector" yaml:"next_selector"`
}

// ArticleConfig defines how to extract body text from an article page.
type ArticleConfig struct {
	ContentSelector string   `json:"content_selector" yaml:"content_selector"`
	FallbackTags    []string `json:"fallback_tags" yaml:"fallback_tags"`
	// ScriptFilter keeps only characters of Script in extracted content.
	ScriptFilter bool   `json:"script_filter" yaml:"script_filter"`
	Script       string `json:"script" yaml:"script"`
}

// Pagination selects the crawl strategy.
type Pagination struct {
	Mode string `json:"mode" yaml:"mode"`
	// MaxPages is the page count in bounded mode. Other modes ignore it.
	MaxPages int `json:"max_pages" yaml:"max_pages"`
	// PageCap optionally limits follow and date modes (0 = no cap).
	PageCap int `json:"page_cap,omitempty" yaml:"page_cap"`
	// Date is the archive date in date mode.
	Date *newsfeed.Date `json:"date,omitempty" yaml:"-"`
	// FeedURL is the feed address in feed mode.
	FeedURL string `json:"feed_url,omitempty" yaml:"feed_url"`
	// Workers is the number of articles of one page fetched at once.
	Workers int `json:"workers" yaml:"workers"`
}

// PageLimit returns the last listing page to visit, or 0 when the crawl runs
// until the listing is exhausted.
func (p Pagination) PageLimit() int {
	if p.Mode == ModeBounded {
		return p.MaxPages
	}
	return p.PageCap
}

// DefaultSiteConfig returns the configuration for Gujarat Samachar.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		BaseURL:       DefaultBaseURL,
		ListingConfig: DefaultListingConfig(),
		ArticleConfig: DefaultArticleConfig(),
		Pagination: Pagination{
			Mode:     ModeBounded,
			MaxPages: 5,
			Workers:  1,
		},
	}
}

// DefaultListingConfig returns the listing selectors for the archive pages.
func DefaultListingConfig() ListingConfig {
	return ListingConfig{
		ListingPath:     "/archive",
		EntrySelector:   "article",
		TitleSelector:   "h2 a",
		SummarySelector: "div.entry-summary p",
		DateSelector:    "time",
		DateAttr:        "datetime",
		DateLayouts:     []string{"02-01-2006", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"},
		NextSelector:    "a.next",
	}
}

// DefaultArticleConfig returns the article selectors with the generic tag
// fallback and the Gujarati script filter enabled.
func DefaultArticleConfig() ArticleConfig {
	return ArticleConfig{
		ContentSelector: "div.article-body",
		FallbackTags:    []string{"p", "h1", "h2", "h3", "ul", "ol"},
		ScriptFilter:    true,
		Script:          "Gujarati",
	}
}

// ScriptTable returns the Unicode table for the configured script, falling
// back to Gujarati.
func (c ArticleConfig) ScriptTable() *unicode.RangeTable {
	if table, ok := script.Lookup(c.Script); ok {
		return table
	}
	return script.Gujarati
}

// ListingURL returns the address of listing page n (1-based).
func (c SiteConfig) ListingURL(page int) string {
	base := strings.TrimRight(c.BaseURL, "/")

	if c.Pagination.Mode == ModeDate && c.Pagination.Date != nil {
		u := fmt.Sprintf("%s/archive/%s", base, c.Pagination.Date.String())
		if page > 1 {
			u = fmt.Sprintf("%s?page=%d", u, page)
		}
		return u
	}

	path := c.ListingConfig.ListingPath
	if path == "" {
		path = "/archive"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s%s?page=%d", base, path, page)
}

// Validate checks that the configuration can drive a crawl.
func (c SiteConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	switch c.Pagination.Mode {
	case ModeBounded:
		if c.Pagination.MaxPages < 1 {
			return fmt.Errorf("bounded pagination needs max_pages >= 1")
		}
	case ModeFollow:
	case ModeDate:
		if c.Pagination.Date == nil {
			return fmt.Errorf("date pagination needs a date")
		}
	case ModeFeed:
		if c.Pagination.FeedURL == "" {
			return fmt.Errorf("feed pagination needs a feed URL")
		}
	default:
		return fmt.Errorf("unknown pagination mode %q", c.Pagination.Mode)
	}

	if c.Pagination.PageCap < 0 {
		return fmt.Errorf("page_cap must not be negative")
	}
	if c.Pagination.Mode != ModeFeed {
		if c.ListingConfig.EntrySelector == "" || c.ListingConfig.TitleSelector == "" {
			return fmt.Errorf("listing needs entry and title selectors")
		}
	}

	return nil
}
