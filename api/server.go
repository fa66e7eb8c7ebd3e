// Package api serves the crawl and search pipeline over HTTP. The last crawl
// result is held in memory only.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/discovery"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/metrics"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/search"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/translate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Options wires the server to the crawl pipeline.
type Options struct {
	Site             scraper.SiteConfig
	Fetcher          fetcher.Fetcher
	Translator       translate.Translator
	TranslateOptions translate.Options
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
	// Gatherer backs GET /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API.
type Server struct {
	opts     Options
	logger   *zap.Logger
	crawling atomic.Bool

	mu   sync.RWMutex
	last *discovery.Result
}

// NewServer creates a server with no crawl result yet.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		opts:   opts,
		logger: opts.Logger,
	}
}

// SetupRouter configures the Gin router with all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(recoveryMiddleware(s.logger))
	router.Use(loggerMiddleware(s.logger))
	router.Use(corsMiddleware())

	router.GET("/healthz", s.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.POST("/crawl", s.HandleCrawl)
	v1.GET("/crawl", s.HandleGetCrawl)
	v1.GET("/articles", s.HandleArticles)
	v1.GET("/config", s.HandleGetConfig)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Snapshot returns the most recent crawl result, or nil.
func (s *Server) Snapshot() *discovery.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Server) setSnapshot(result *discovery.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = result
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// WarningResponse is a listing failure in JSON form.
type WarningResponse struct {
	Page    int    `json:"page"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// CrawlSummary describes a crawl without its articles.
type CrawlSummary struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	Pages      int               `json:"pages"`
	Articles   int               `json:"articles"`
	Dropped    int               `json:"dropped"`
	Warnings   []WarningResponse `json:"warnings"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// CrawlRequest optionally overrides the pagination of one crawl.
type CrawlRequest struct {
	Mode     string `json:"mode"`
	MaxPages *int   `json:"max_pages"`
	PageCap  *int   `json:"page_cap"`
	Date     string `json:"date"`
	FeedURL  string `json:"feed_url"`
	Workers  *int   `json:"workers"`
}

// ArticlesResponse is the body of GET /api/v1/articles.
type ArticlesResponse struct {
	Articles []newsfeed.Article `json:"articles"`
	Total    int                `json:"total"`
	Query    QueryInfo          `json:"query"`
	Crawl    CrawlState         `json:"crawl"`
}

// QueryInfo reports how the query text was resolved.
type QueryInfo struct {
	Original         string `json:"original"`
	Text             string `json:"text"`
	Translated       bool   `json:"translated"`
	TranslationError string `json:"translation_error,omitempty"`
	Date             string `json:"date,omitempty"`
}

// CrawlState tells clients whether an empty result came from a failed crawl.
type CrawlState struct {
	RunID    string            `json:"run_id"`
	Status   string            `json:"status"`
	Warnings []WarningResponse `json:"warnings"`
}

func warningsOf(result *discovery.Result) []WarningResponse {
	warnings := make([]WarningResponse, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, WarningResponse{Page: w.Page, URL: w.URL, Message: w.Err.Error()})
	}
	return warnings
}

func summaryOf(result *discovery.Result) CrawlSummary {
	return CrawlSummary{
		RunID:      result.RunID.String(),
		Status:     string(result.Status()),
		Pages:      result.Pages,
		Articles:   len(result.Corpus),
		Dropped:    result.Dropped,
		Warnings:   warningsOf(result),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
}

// HandleHealth handles GET /healthz.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleCrawl handles POST /api/v1/crawl. It runs a crawl synchronously and
// replaces the snapshot when the crawl finishes.
func (s *Server) HandleCrawl(c *gin.Context) {
	// An empty body, chunked or not, means no overrides
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("invalid_body", "Invalid request body: "+err.Error()))
		return
	}

	site, err := applyCrawlRequest(s.opts.Site, req)
	if err == nil {
		err = site.Validate()
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", err.Error()))
		return
	}

	if !s.crawling.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, errorResponse("crawl_in_progress", "A crawl is already running"))
		return
	}
	defer s.crawling.Store(false)

	crawler := discovery.NewCrawler(site, s.opts.Fetcher,
		discovery.WithLogger(s.logger),
		discovery.WithMetrics(s.opts.Metrics),
	)
	result, err := crawler.Crawl(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, errorResponse("crawl_interrupted", "Crawl did not finish: "+err.Error()))
		return
	}

	s.setSnapshot(result)
	c.JSON(http.StatusOK, summaryOf(result))
}

func applyCrawlRequest(site scraper.SiteConfig, req CrawlRequest) (scraper.SiteConfig, error) {
	if req.Mode != "" {
		site.Pagination.Mode = req.Mode
	}
	if req.MaxPages != nil {
		site.Pagination.MaxPages = *req.MaxPages
	}
	if req.PageCap != nil {
		site.Pagination.PageCap = *req.PageCap
	}
	if req.Workers != nil {
		site.Pagination.Workers = *req.Workers
	}
	if req.FeedURL != "" {
		site.Pagination.FeedURL = req.FeedURL
	}
	if req.Date != "" {
		date, err := newsfeed.ParseDate(req.Date)
		if err != nil {
			return site, fmt.Errorf("invalid date parameter: must be YYYY-MM-DD")
		}
		site.Pagination.Date = &date
	}
	return site, nil
}

// HandleGetCrawl handles GET /api/v1/crawl.
func (s *Server) HandleGetCrawl(c *gin.Context) {
	result := s.Snapshot()
	if result == nil {
		c.JSON(http.StatusNotFound, errorResponse("not_crawled", "No crawl has run yet"))
		return
	}
	c.JSON(http.StatusOK, summaryOf(result))
}

// HandleArticles handles GET /api/v1/articles. Query parameters: q (free
// text, translated to Gujarati), date (YYYY-MM-DD), fields (comma list),
// fallback (empty, original or none) and translate=false to skip
// translation.
func (s *Server) HandleArticles(c *gin.Context) {
	result := s.Snapshot()
	if result == nil {
		s.opts.Metrics.SearchServed("not_crawled")
		c.JSON(http.StatusConflict, errorResponse("not_crawled", "Run POST /api/v1/crawl first"))
		return
	}

	var date *newsfeed.Date
	if raw := c.Query("date"); raw != "" {
		d, err := newsfeed.ParseDate(raw)
		if err != nil {
			s.opts.Metrics.SearchServed("invalid")
			c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid date parameter: must be YYYY-MM-DD"))
			return
		}
		date = &d
	}

	fields, err := search.ParseFields(c.Query("fields"))
	if err != nil {
		s.opts.Metrics.SearchServed("invalid")
		c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid fields parameter: "+err.Error()))
		return
	}

	opts := s.opts.TranslateOptions
	if raw := c.Query("fallback"); raw != "" {
		fallback, err := translate.ParseFallback(raw)
		if err != nil {
			s.opts.Metrics.SearchServed("invalid")
			c.JSON(http.StatusBadRequest, errorResponse("invalid_parameter", "Invalid fallback parameter: "+err.Error()))
			return
		}
		opts.Fallback = fallback
	}

	translator := s.opts.Translator
	if strings.EqualFold(c.Query("translate"), "false") {
		translator = nil
	}

	text := c.Query("q")
	resolution := translate.Resolve(c.Request.Context(), translator, text, opts)
	info := QueryInfo{
		Original:   strings.TrimSpace(text),
		Text:       resolution.Text,
		Translated: resolution.Translated,
	}
	if resolution.Err != nil {
		info.TranslationError = resolution.Err.Error()
		s.opts.Metrics.TranslationFailed()
		s.logger.Warn("Query translation failed, using fallback",
			zap.String("query", text),
			zap.String("fallback", opts.Fallback.String()),
			zap.Error(resolution.Err),
		)
	}
	if date != nil {
		info.Date = date.String()
	}

	articles := search.Search(result.Corpus, search.QueryFromResolution(resolution, date, fields))

	outcome := "ok"
	if len(articles) == 0 {
		outcome = "empty"
	}
	s.opts.Metrics.SearchServed(outcome)

	c.JSON(http.StatusOK, ArticlesResponse{
		Articles: articles,
		Total:    len(articles),
		Query:    info,
		Crawl: CrawlState{
			RunID:    result.RunID.String(),
			Status:   string(result.Status()),
			Warnings: warningsOf(result),
		},
	})
}

// HandleGetConfig handles GET /api/v1/config.
func (s *Server) HandleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Site)
}
