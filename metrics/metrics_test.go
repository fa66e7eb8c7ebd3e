package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew_RegistersCollectors verifies collectors land in the given registry
func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	m.PageParsed()
	m.ArticleAdded()
	m.ArticleDropped(DropFetch)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "gsarchive_crawl_pages_total")
	assert.Contains(t, names, "gsarchive_crawl_articles_total")
	assert.Contains(t, names, "gsarchive_crawl_articles_dropped_total")
}

// TestCounters verifies counter increments
func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.PageParsed()
	m.PageParsed()
	m.ArticleAdded()
	m.ArticleDropped(DropNoContent)
	m.ArticleDropped(DropNoContent)
	m.FetchFailed("transport")
	m.SearchServed("ok")
	m.TranslationFailed()
	m.CrawlFinished(2 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ArticlesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ArticlesDropped.WithLabelValues(DropNoContent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranslationFailures))
}

// TestNilMetrics verifies a nil receiver records nothing and does not panic
func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.PageParsed()
		m.ArticleAdded()
		m.ArticleDropped(DropFetch)
		m.FetchFailed("bad_status")
		m.CrawlFinished(time.Second)
		m.SearchServed("ok")
		m.TranslationFailed()
	})
}
