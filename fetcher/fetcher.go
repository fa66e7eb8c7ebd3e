// Package fetcher retrieves raw documents over HTTP.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent identifies the crawler to the target site.
const DefaultUserAgent = "gsarchive/1.0 (+news archive search)"

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodySize is the largest response body accepted by default.
const DefaultMaxBodySize = 10 << 20

// Kind classifies a fetch failure.
type Kind int

const (
	// TransportFailure covers network, DNS and timeout errors.
	TransportFailure Kind = iota + 1
	// BadStatus means the server answered outside the 2xx range.
	BadStatus
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "transport"
	case BadStatus:
		return "bad_status"
	default:
		return "unknown"
	}
}

// FetchError describes why a URL could not be retrieved.
type FetchError struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == BadStatus {
		return fmt.Sprintf("fetch %s: HTTP error: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == TransportFailure
}

// StatusCode returns the HTTP status carried by a BadStatus error, or 0.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Kind == BadStatus {
		return fe.StatusCode
	}
	return 0
}

// KindOf returns the kind of a fetch error, or 0 if err is not one.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// Response is a successfully retrieved document.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Fetcher retrieves a URL. Implementations return *FetchError on failure and
// do not retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes. Larger
// bodies fail with a TransportFailure.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the underlying client. The client's timeout is kept
// as given.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewHTTPFetcher creates a fetcher with a 10 second timeout and the default
// User-Agent.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a GET request and returns the body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: TransportFailure, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: TransportFailure, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		return nil, &FetchError{Kind: BadStatus, StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{Kind: TransportFailure, URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{Kind: TransportFailure, URL: url, Err: fmt.Errorf("response body exceeds %d bytes", f.maxBodySize)}
	}

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
