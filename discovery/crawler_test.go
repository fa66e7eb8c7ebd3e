package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/metrics"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fixtureSite serves a small archive. Listing page n lists the article ids
// in pages[n]; ids in missing return 404 and ids in english have no
// Gujarati text.
type fixtureSite struct {
	pages     map[int][]string
	next      map[int]bool
	failPages map[int]bool
	missing   map[string]bool
	english   map[string]bool
	dated     map[int][]string
	feed      string

	mu   sync.Mutex
	hits []string
}

// Test helper: starts the fixture site
func (s *fixtureSite) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(server.Close)
	return server
}

func (s *fixtureSite) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, r.URL.RequestURI())
	s.mu.Unlock()

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}

	switch {
	case r.URL.Path == "/archive":
		if s.failPages[page] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, listingHTML(s.pages[page], s.next[page]))
	case strings.HasPrefix(r.URL.Path, "/archive/"):
		fmt.Fprint(w, listingHTML(s.dated[page], page < len(s.dated)))
	case strings.HasPrefix(r.URL.Path, "/news/"):
		id := strings.TrimPrefix(r.URL.Path, "/news/")
		if s.missing[id] {
			http.NotFound(w, r)
			return
		}
		if s.english[id] {
			fmt.Fprintf(w, `<html><body><div class="article-body">English only %s</div></body></html>`, id)
			return
		}
		fmt.Fprintf(w, `<html><body><div class="article-body">Story %s: ગુજરાતી લેખ</div></body></html>`, id)
	case r.URL.Path == "/feed.xml":
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, s.feed)
	default:
		http.NotFound(w, r)
	}
}

func (s *fixtureSite) requested(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.hits {
		if h == uri {
			return true
		}
	}
	return false
}

func listingHTML(ids []string, next bool) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<article>
			<h2><a href="/news/%s">Article %s</a></h2>
			<div class="entry-summary"><p>Summary %s</p></div>
			<time datetime="2024-03-01T09:00:00">01-03-2024</time>
		</article>`, id, id, id)
	}
	if next {
		b.WriteString(`<a class="next" href="#">Next</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// Test helper: site config pointed at the fixture server
func fixtureConfig(baseURL, mode string, maxPages int) scraper.SiteConfig {
	cfg := scraper.DefaultSiteConfig()
	cfg.BaseURL = baseURL
	cfg.Pagination.Mode = mode
	cfg.Pagination.MaxPages = maxPages
	return cfg
}

func titles(corpus newsfeed.Corpus) []string {
	out := make([]string, 0, len(corpus))
	for _, a := range corpus {
		out = append(out, a.Title)
	}
	return out
}

// TestCrawl_Bounded verifies bounded mode visits every page, including empty
// ones, and keeps page order
func TestCrawl_Bounded(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{
		1: {"1a", "1b"},
		2: {"2a"},
		4: {"4a"},
	}}
	server := site.start(t)

	crawler := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 5), fetcher.NewHTTPFetcher(),
		WithLogger(zaptest.NewLogger(t)))
	result, err := crawler.Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusComplete, result.Status())
	assert.Equal(t, 5, result.Pages)
	assert.Equal(t, []string{"Article 1a", "Article 1b", "Article 2a", "Article 4a"}, titles(result.Corpus))
	assert.True(t, site.requested("/archive?page=5"))
	assert.False(t, site.requested("/archive?page=6"))
	assert.NotEqual(t, uuid.Nil, result.RunID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

// TestCrawl_ArticleFields verifies assembled articles carry stub data and
// filtered content
func TestCrawl_ArticleFields(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{1: {"7"}}}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 1), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Corpus, 1)

	article := result.Corpus[0]
	assert.Equal(t, "Article 7", article.Title)
	assert.Equal(t, server.URL+"/news/7", article.Link)
	assert.Equal(t, "Summary 7", article.Summary)
	assert.Equal(t, "ગુજરાતી લેખ", article.Content)
	require.NotNil(t, article.Date)
	assert.Equal(t, "2024-03-01", article.Date.String())
}

// TestCrawl_FollowStopsWithoutNext verifies follow mode stops on the first
// page without a next link
func TestCrawl_FollowStopsWithoutNext(t *testing.T) {
	site := &fixtureSite{
		pages: map[int][]string{1: {"1a"}, 2: {"2a"}, 3: {"3a"}},
		next:  map[int]bool{1: true, 2: false, 3: true},
	}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeFollow, 0), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"Article 1a", "Article 2a"}, titles(result.Corpus))
	assert.False(t, site.requested("/archive?page=3"), "page 3 should never be requested")
}

// TestCrawl_FollowStopsOnEmptyPage verifies zero entries end the crawl even
// with a next link
func TestCrawl_FollowStopsOnEmptyPage(t *testing.T) {
	site := &fixtureSite{
		pages: map[int][]string{1: {"1a"}, 3: {"3a"}},
		next:  map[int]bool{1: true, 2: true, 3: true},
	}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeFollow, 0), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, StatusComplete, result.Status())
	assert.False(t, site.requested("/archive?page=3"))
}

// TestCrawl_FollowCap verifies PageCap caps follow mode
func TestCrawl_FollowCap(t *testing.T) {
	site := &fixtureSite{
		pages: map[int][]string{1: {"1"}, 2: {"2"}, 3: {"3"}},
		next:  map[int]bool{1: true, 2: true, 3: true},
	}
	server := site.start(t)

	cfg := fixtureConfig(server.URL, scraper.ModeFollow, 0)
	cfg.Pagination.PageCap = 2
	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Len(t, result.Corpus, 2)
}

// TestCrawl_FollowIgnoresBoundedPageCount verifies follow mode reads past
// the default bounded page count until the next link disappears
func TestCrawl_FollowIgnoresBoundedPageCount(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{}, next: map[int]bool{}}
	for page := 1; page <= 8; page++ {
		site.pages[page] = []string{strconv.Itoa(page)}
		site.next[page] = page < 8
	}
	server := site.start(t)

	cfg := scraper.DefaultSiteConfig()
	cfg.BaseURL = server.URL
	cfg.Pagination.Mode = scraper.ModeFollow
	require.Equal(t, 5, cfg.Pagination.MaxPages)

	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 8, result.Pages)
	assert.Len(t, result.Corpus, 8)
	assert.Equal(t, StatusComplete, result.Status())
	assert.False(t, site.requested("/archive?page=9"))
}

// TestCrawl_ListingFailureKeepsEarlierPages verifies a failure after two
// pages returns those pages' articles with a warning
func TestCrawl_ListingFailureKeepsEarlierPages(t *testing.T) {
	site := &fixtureSite{
		pages:     map[int][]string{1: {"1a", "1b"}, 2: {"2a"}, 4: {"4a"}},
		failPages: map[int]bool{3: true},
	}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 5), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err, "listing failures are not fatal")
	assert.Equal(t, StatusPartial, result.Status())
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"Article 1a", "Article 1b", "Article 2a"}, titles(result.Corpus))

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 3, result.Warnings[0].Page)
	assert.Equal(t, server.URL+"/archive?page=3", result.Warnings[0].URL)
	assert.Equal(t, http.StatusInternalServerError, fetcher.StatusCode(result.Warnings[0].Err))
	assert.Contains(t, result.Warnings[0].String(), "page 3")
	assert.False(t, site.requested("/archive?page=4"), "the crawl should end at the failed page")
}

// TestCrawl_FirstPageFailure verifies an unreachable archive is reported as
// failed, not as an empty result
func TestCrawl_FirstPageFailure(t *testing.T) {
	site := &fixtureSite{failPages: map[int]bool{1: true}}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 5), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status())
	assert.Empty(t, result.Corpus)
	assert.Zero(t, result.Pages)
}

// TestCrawl_UnreachableSite verifies transport failures become warnings
func TestCrawl_UnreachableSite(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	result, err := NewCrawler(fixtureConfig(baseURL, scraper.ModeBounded, 5), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status())
	require.Len(t, result.Warnings, 1)
	assert.True(t, fetcher.IsTransport(result.Warnings[0].Err))
}

// TestCrawl_DropsFailedArticles verifies article failures drop only that
// stub and every emitted article is complete
func TestCrawl_DropsFailedArticles(t *testing.T) {
	site := &fixtureSite{
		pages:   map[int][]string{1: {"ok1", "gone", "eng", "ok2"}},
		missing: map[string]bool{"gone": true},
		english: map[string]bool{"eng": true},
	}
	server := site.start(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 1), fetcher.NewHTTPFetcher(),
		WithMetrics(m)).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusComplete, result.Status())
	assert.Equal(t, []string{"Article ok1", "Article ok2"}, titles(result.Corpus))
	assert.Equal(t, 2, result.Dropped)

	for _, article := range result.Corpus {
		assert.True(t, article.Complete(), "corpus should hold only complete articles")
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ArticlesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesDropped.WithLabelValues(metrics.DropFetch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesDropped.WithLabelValues(metrics.DropNoContent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("bad_status")))
}

// TestCrawl_KeepsDuplicates verifies the corpus is not deduplicated across
// pages
func TestCrawl_KeepsDuplicates(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{1: {"same"}, 2: {"same"}}}
	server := site.start(t)

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 2), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.Corpus, 2)
	assert.Len(t, result.Corpus.Dedupe(), 1)
}

// TestCrawl_WorkersKeepOrder verifies concurrent extraction yields the same
// corpus as sequential extraction
func TestCrawl_WorkersKeepOrder(t *testing.T) {
	ids := make([]string, 0, 12)
	for i := range 12 {
		ids = append(ids, fmt.Sprintf("w%d", i))
	}
	site := &fixtureSite{
		pages:   map[int][]string{1: ids, 2: {"last"}},
		missing: map[string]bool{"w3": true},
	}
	server := site.start(t)

	sequential, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 2), fetcher.NewHTTPFetcher()).
		Crawl(context.Background())
	require.NoError(t, err)

	cfg := fixtureConfig(server.URL, scraper.ModeBounded, 2)
	cfg.Pagination.Workers = 4
	concurrent, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, titles(sequential.Corpus), titles(concurrent.Corpus))
	assert.Equal(t, sequential.Dropped, concurrent.Dropped)
	assert.Equal(t, "Article last", concurrent.Corpus[len(concurrent.Corpus)-1].Title)
}

// TestCrawl_DateMode verifies the date archive is walked with next links
func TestCrawl_DateMode(t *testing.T) {
	site := &fixtureSite{dated: map[int][]string{1: {"d1"}, 2: {"d2"}}}
	server := site.start(t)

	cfg := fixtureConfig(server.URL, scraper.ModeDate, 0)
	cfg.Pagination.Date = &newsfeed.Date{Year: 2024, Month: time.March, Day: 1}

	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Article d1", "Article d2"}, titles(result.Corpus))
	assert.True(t, site.requested("/archive/2024-03-01"))
	assert.True(t, site.requested("/archive/2024-03-01?page=2"))
	assert.False(t, site.requested("/archive/2024-03-01?page=3"))
}

// TestCrawl_FeedMode verifies feed items become articles in feed order
func TestCrawl_FeedMode(t *testing.T) {
	site := &fixtureSite{}
	server := site.start(t)
	site.feed = fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Archive</title>
<item><title>Feed two</title><link>%[1]s/news/f2</link>
  <description>&lt;p&gt;Second &lt;b&gt;story&lt;/b&gt;&lt;/p&gt;</description>
  <pubDate>Sat, 02 Mar 2024 10:00:00 +0530</pubDate></item>
<item><title>Feed one</title><link>%[1]s/news/f1</link>
  <pubDate>Fri, 01 Mar 2024 10:00:00 +0530</pubDate></item>
<item><title></title><link>%[1]s/news/untitled</link></item>
</channel></rss>`, server.URL)

	cfg := fixtureConfig(server.URL, scraper.ModeFeed, 0)
	cfg.Pagination.FeedURL = server.URL + "/feed.xml"

	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusComplete, result.Status())
	require.Equal(t, []string{"Feed two", "Feed one"}, titles(result.Corpus))
	assert.Equal(t, "Second story", result.Corpus[0].Summary)
	require.NotNil(t, result.Corpus[0].Date)
	assert.Equal(t, "2024-03-02", result.Corpus[0].Date.String())
	assert.Equal(t, "ગુજરાતી લેખ", result.Corpus[1].Content)
}

// TestCrawl_FeedFailure verifies a bad feed is a warning
func TestCrawl_FeedFailure(t *testing.T) {
	site := &fixtureSite{feed: "not a feed"}
	server := site.start(t)

	cfg := fixtureConfig(server.URL, scraper.ModeFeed, 0)
	cfg.Pagination.FeedURL = server.URL + "/feed.xml"

	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status())
}

// TestCrawl_Cancelled verifies cancellation returns the partial result and
// the context error
func TestCrawl_Cancelled(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{1: {"1a"}}}
	server := site.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 5), fetcher.NewHTTPFetcher()).
		Crawl(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Corpus)
	assert.Empty(t, result.Warnings, "cancellation is not a listing failure")
}

// TestCrawl_InvalidConfig verifies configuration is checked before fetching
func TestCrawl_InvalidConfig(t *testing.T) {
	cfg := scraper.DefaultSiteConfig()
	cfg.Pagination.Mode = "sideways"

	result, err := NewCrawler(cfg, fetcher.NewHTTPFetcher()).Crawl(context.Background())

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "invalid site config")
}

// TestCrawl_Independent verifies two crawls share no state
func TestCrawl_Independent(t *testing.T) {
	site := &fixtureSite{pages: map[int][]string{1: {"x"}}}
	server := site.start(t)
	crawler := NewCrawler(fixtureConfig(server.URL, scraper.ModeBounded, 1), fetcher.NewHTTPFetcher())

	first, err := crawler.Crawl(context.Background())
	require.NoError(t, err)
	second, err := crawler.Crawl(context.Background())
	require.NoError(t, err)

	assert.Len(t, first.Corpus, 1)
	assert.Len(t, second.Corpus, 1)
	assert.NotEqual(t, first.RunID, second.RunID)
}
