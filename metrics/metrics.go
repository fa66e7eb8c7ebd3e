// Package metrics provides Prometheus collectors for crawling and search.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "gsarchive"

// Reasons an article is dropped from the corpus.
const (
	DropFetch      = "fetch"
	DropNoContent  = "no_content"
	DropIncomplete = "incomplete"
)

// Metrics holds the crawl and search collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	PagesTotal          prometheus.Counter
	ArticlesTotal       prometheus.Counter
	ArticlesDropped     *prometheus.CounterVec
	FetchErrors         *prometheus.CounterVec
	CrawlDuration       prometheus.Histogram
	SearchRequests      *prometheus.CounterVec
	TranslationFailures prometheus.Counter
}

// New creates and registers all collectors with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initCrawlMetrics(factory)
	m.initSearchMetrics(factory)

	return m
}

func (m *Metrics) initCrawlMetrics(factory promauto.Factory) {
	m.PagesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "crawl",
		Name:      "pages_total",
		Help:      "Listing pages parsed",
	})

	m.ArticlesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "crawl",
		Name:      "articles_total",
		Help:      "Articles added to a corpus",
	})

	m.ArticlesDropped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "crawl",
			Name:      "articles_dropped_total",
			Help:      "Article stubs left out of the corpus",
		},
		[]string{"reason"},
	)

	m.FetchErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed document fetches",
		},
		[]string{"kind"},
	)

	m.CrawlDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "crawl",
		Name:      "duration_seconds",
		Help:      "Duration of a full crawl",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17min
	})
}

func (m *Metrics) initSearchMetrics(factory promauto.Factory) {
	m.SearchRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Search requests by outcome",
		},
		[]string{"outcome"},
	)

	m.TranslationFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "search",
		Name:      "translation_failures_total",
		Help:      "Query translations that failed and fell back",
	})
}

// PageParsed records one listing page.
func (m *Metrics) PageParsed() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

// ArticleAdded records one article appended to a corpus.
func (m *Metrics) ArticleAdded() {
	if m == nil {
		return
	}
	m.ArticlesTotal.Inc()
}

// ArticleDropped records a stub that did not become an article.
func (m *Metrics) ArticleDropped(reason string) {
	if m == nil {
		return
	}
	m.ArticlesDropped.WithLabelValues(reason).Inc()
}

// FetchFailed records a failed fetch by kind.
func (m *Metrics) FetchFailed(kind string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(kind).Inc()
}

// CrawlFinished records the duration of a crawl.
func (m *Metrics) CrawlFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.CrawlDuration.Observe(d.Seconds())
}

// SearchServed records a search request outcome.
func (m *Metrics) SearchServed(outcome string) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(outcome).Inc()
}

// TranslationFailed records a translation fallback.
func (m *Metrics) TranslationFailed() {
	if m == nil {
		return
	}
	m.TranslationFailures.Inc()
}
