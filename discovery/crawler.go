package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/document"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/metrics"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status summarizes how a crawl ended.
type Status string

const (
	// StatusComplete means every listing page was processed.
	StatusComplete Status = "complete"
	// StatusPartial means a listing page failed after at least one page
	// succeeded.
	StatusPartial Status = "partial"
	// StatusFailed means no listing page could be processed.
	StatusFailed Status = "failed"
)

// Warning records a listing page that ended the crawl.
type Warning struct {
	Page int
	URL  string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("page %d (%s): %v", w.Page, w.URL, w.Err)
}

// Result is the outcome of one crawl. A crawl that hit a listing failure
// still returns the articles gathered before it, with the failure in
// Warnings.
type Result struct {
	RunID      uuid.UUID
	Corpus     newsfeed.Corpus
	Pages      int
	Dropped    int
	Warnings   []Warning
	StartedAt  time.Time
	FinishedAt time.Time
}

// Status distinguishes a clean crawl from one that stopped on a fetch
// failure. An empty corpus with StatusComplete means nothing was published,
// not that the site was unreachable.
func (r *Result) Status() Status {
	switch {
	case len(r.Warnings) == 0:
		return StatusComplete
	case r.Pages > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// Duration is the wall time of the crawl.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Result) addWarning(page int, url string, err error) {
	r.Warnings = append(r.Warnings, Warning{Page: page, URL: url, Err: err})
}

// Crawler walks listing pages and extracts each discovered article. A
// Crawler holds no state between Crawl calls.
type Crawler struct {
	config    scraper.SiteConfig
	fetcher   fetcher.Fetcher
	extractor *Extractor
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the crawl logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the collectors crawl events are recorded in.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// NewCrawler creates a crawler for cfg that retrieves every document
// through f.
func NewCrawler(cfg scraper.SiteConfig, f fetcher.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		config:    cfg,
		fetcher:   f,
		extractor: NewExtractor(f, cfg.ArticleConfig),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl runs one crawl with the configured pagination strategy. Listing
// failures end the crawl but are reported in Result.Warnings with a nil
// error. A cancelled context returns the partial result together with
// ctx.Err().
func (c *Crawler) Crawl(ctx context.Context) (*Result, error) {
	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site config: %w", err)
	}

	result := &Result{
		RunID:     uuid.New(),
		Corpus:    newsfeed.Corpus{},
		StartedAt: time.Now(),
	}
	logger := c.logger.With(zap.String("run_id", result.RunID.String()))

	logger.Info("Crawl started",
		zap.String("base_url", c.config.BaseURL),
		zap.String("mode", c.config.Pagination.Mode),
		zap.Int("page_limit", c.config.Pagination.PageLimit()),
	)

	var err error
	if c.config.Pagination.Mode == scraper.ModeFeed {
		err = c.crawlFeed(ctx, logger, result)
	} else {
		err = c.crawlPages(ctx, logger, result)
	}

	result.FinishedAt = time.Now()
	c.metrics.CrawlFinished(result.Duration())

	logger.Info("Crawl finished",
		zap.String("status", string(result.Status())),
		zap.Int("pages", result.Pages),
		zap.Int("articles", len(result.Corpus)),
		zap.Int("dropped", result.Dropped),
		zap.Duration("duration", result.Duration()),
	)

	return result, err
}

func (c *Crawler) crawlPages(ctx context.Context, logger *zap.Logger, result *Result) error {
	pagination := c.config.Pagination
	bounded := pagination.Mode == scraper.ModeBounded
	limit := pagination.PageLimit()

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limit > 0 && page > limit {
			return nil
		}

		pageURL := c.config.ListingURL(page)
		listing, err := c.fetchListing(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("Listing page failed, ending crawl",
				zap.Int("page", page),
				zap.String("url", pageURL),
				zap.Error(err),
			)
			result.addWarning(page, pageURL, err)
			return nil
		}

		result.Pages++
		c.metrics.PageParsed()

		before := len(result.Corpus)
		if err := c.processStubs(ctx, logger, listing.Stubs, result); err != nil {
			return err
		}

		logger.Info("Listing page processed",
			zap.Int("page", page),
			zap.Int("entries", len(listing.Stubs)),
			zap.Int("articles", len(result.Corpus)-before),
			zap.Bool("has_next", listing.HasNextPage),
		)

		if bounded {
			continue
		}
		if len(listing.Stubs) == 0 || !listing.HasNextPage {
			return nil
		}
	}
}

func (c *Crawler) crawlFeed(ctx context.Context, logger *zap.Logger, result *Result) error {
	feedURL := c.config.Pagination.FeedURL

	resp, err := c.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.metrics.FetchFailed(fetcher.KindOf(err).String())
		logger.Warn("Feed fetch failed", zap.String("url", feedURL), zap.Error(err))
		result.addWarning(1, feedURL, err)
		return nil
	}

	stubs, err := ParseFeed(resp.Body, c.config.BaseURL)
	if err != nil {
		logger.Warn("Feed parse failed", zap.String("url", feedURL), zap.Error(err))
		result.addWarning(1, feedURL, err)
		return nil
	}

	result.Pages++
	c.metrics.PageParsed()

	return c.processStubs(ctx, logger, stubs, result)
}

func (c *Crawler) fetchListing(ctx context.Context, pageURL string) (Listing, error) {
	resp, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.metrics.FetchFailed(fetcher.KindOf(err).String())
		return Listing{}, err
	}

	doc, err := document.ParseBytes(resp.Body)
	if err != nil {
		return Listing{}, err
	}

	return ParseListing(doc, c.config.BaseURL, c.config.ListingConfig), nil
}

// extraction is the outcome for one stub.
type extraction struct {
	done    bool
	content string
	err     error
}

// processStubs extracts every stub of one page and appends the complete
// articles in stub order.
func (c *Crawler) processStubs(ctx context.Context, logger *zap.Logger, stubs []newsfeed.ArticleStub, result *Result) error {
	var outcomes []extraction
	if c.config.Pagination.Workers > 1 {
		outcomes = c.extractConcurrent(ctx, stubs)
	} else {
		outcomes = c.extractSequential(ctx, stubs)
	}

	cancelled := ctx.Err()

	for i, stub := range stubs {
		out := outcomes[i]
		if !out.done {
			continue
		}
		if out.err != nil {
			// Failures caused by cancellation are not the article's fault
			if cancelled != nil {
				continue
			}
			c.drop(logger, stub, out.err, result)
			continue
		}

		if !result.Corpus.Add(newsfeed.NewArticle(stub, out.content)) {
			c.drop(logger, stub, errIncomplete, result)
			continue
		}
		c.metrics.ArticleAdded()
	}

	return cancelled
}

var errIncomplete = errors.New("article is missing a required field")

func (c *Crawler) drop(logger *zap.Logger, stub newsfeed.ArticleStub, err error, result *Result) {
	result.Dropped++

	reason := metrics.DropFetch
	switch {
	case errors.Is(err, ErrContentNotAvailable):
		reason = metrics.DropNoContent
	case errors.Is(err, errIncomplete):
		reason = metrics.DropIncomplete
	default:
		if kind := fetcher.KindOf(err); kind != 0 {
			c.metrics.FetchFailed(kind.String())
		}
	}
	c.metrics.ArticleDropped(reason)

	logger.Debug("Article dropped",
		zap.String("link", stub.Link),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func (c *Crawler) extractSequential(ctx context.Context, stubs []newsfeed.ArticleStub) []extraction {
	outcomes := make([]extraction, len(stubs))
	for i, stub := range stubs {
		if ctx.Err() != nil {
			break
		}
		content, err := c.extractor.Fetch(ctx, stub.Link)
		outcomes[i] = extraction{done: true, content: content, err: err}
	}
	return outcomes
}

// extractConcurrent fetches the stubs of one page with at most Workers
// requests in flight. Each goroutine writes only its own slot, so order is
// kept by index.
func (c *Crawler) extractConcurrent(ctx context.Context, stubs []newsfeed.ArticleStub) []extraction {
	outcomes := make([]extraction, len(stubs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Pagination.Workers)

	for i, stub := range stubs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			content, err := c.extractor.Fetch(gctx, stub.Link)
			outcomes[i] = extraction{done: true, content: content, err: err}
			return nil
		})
	}

	// Extraction errors are recorded per stub, never returned to the group
	_ = g.Wait()

	return outcomes
}
