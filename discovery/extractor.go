package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/document"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/script"
)

// ErrContentNotAvailable is returned when an article page has no usable body
// text, either because nothing matched or because the script filter removed
// everything.
var ErrContentNotAvailable = errors.New("content not available")

// ExtractionError reports an article page that could not be fetched or
// parsed.
type ExtractionError struct {
	Link string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Link, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractContent returns the body text of an article page. The content
// selector is tried first. Without a match, the fallback tags are collected
// in document order and joined with single spaces.
func ExtractContent(doc document.Node, cfg scraper.ArticleConfig) (string, error) {
	var content string

	if container, ok := doc.FindContainer(cfg.ContentSelector); ok {
		content = document.NormalizeSpace(container.Text())
	}

	if content == "" {
		content = collectFallback(doc, cfg.FallbackTags)
	}

	if content == "" {
		return "", ErrContentNotAvailable
	}

	if cfg.ScriptFilter {
		content = script.Filter(content, cfg.ScriptTable())
		if content == "" {
			return "", ErrContentNotAvailable
		}
	}

	return content, nil
}

func collectFallback(doc document.Node, tags []string) string {
	parts := make([]string, 0)
	for _, node := range doc.FindAll(tags...) {
		text := strings.TrimSpace(node.Text())
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Extractor fetches article pages and extracts their content.
type Extractor struct {
	fetcher fetcher.Fetcher
	config  scraper.ArticleConfig
}

// NewExtractor creates an extractor for the given article layout.
func NewExtractor(f fetcher.Fetcher, cfg scraper.ArticleConfig) *Extractor {
	return &Extractor{fetcher: f, config: cfg}
}

// Fetch retrieves link and extracts its content. Fetch and parse failures
// come back as *ExtractionError; an empty page is ErrContentNotAvailable.
func (e *Extractor) Fetch(ctx context.Context, link string) (string, error) {
	resp, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return "", &ExtractionError{Link: link, Err: err}
	}

	doc, err := document.ParseBytes(resp.Body)
	if err != nil {
		return "", &ExtractionError{Link: link, Err: err}
	}

	return ExtractContent(doc, e.config)
}
