package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/fetcher"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/logging"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/translate"
	"go.uber.org/zap"
)

// Environment variables that override the config file.
const (
	EnvBaseURL           = "GSARCHIVE_BASE_URL"
	EnvMode              = "GSARCHIVE_MODE"
	EnvMaxPages          = "GSARCHIVE_MAX_PAGES"
	EnvPageCap           = "GSARCHIVE_PAGE_CAP"
	EnvDate              = "GSARCHIVE_DATE"
	EnvFeedURL           = "GSARCHIVE_FEED_URL"
	EnvWorkers           = "GSARCHIVE_WORKERS"
	EnvTimeout           = "GSARCHIVE_TIMEOUT"
	EnvUserAgent         = "GSARCHIVE_USER_AGENT"
	EnvRetries           = "GSARCHIVE_RETRIES"
	EnvLogLevel          = "GSARCHIVE_LOG_LEVEL"
	EnvAddr              = "GSARCHIVE_ADDR"
	EnvTranslateEndpoint = "GSARCHIVE_TRANSLATE_ENDPOINT"
)

// Config is the full runtime configuration.
type Config struct {
	Site scraper.SiteConfig `yaml:"site"`
	// ArchiveDate is the YYYY-MM-DD date crawled in date mode.
	ArchiveDate string          `yaml:"archive_date"`
	Fetch       FetchConfig     `yaml:"fetch"`
	Translate   TranslateConfig `yaml:"translate"`
	Server      ServerConfig    `yaml:"server"`
	Logging     logging.Config  `yaml:"logging"`
}

// FetchConfig controls HTTP retrieval.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	// Retries is the number of extra attempts after a transport failure.
	Retries uint64 `yaml:"retries"`
}

// TranslateConfig controls query translation.
type TranslateConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	// Fallback is one of empty, original or none.
	Fallback string `yaml:"fallback"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Site: scraper.DefaultSiteConfig(),
		Fetch: FetchConfig{
			Timeout:   fetcher.DefaultTimeout,
			UserAgent: fetcher.DefaultUserAgent,
		},
		Translate: TranslateConfig{
			Enabled:  true,
			Endpoint: translate.DefaultEndpoint,
			Source:   translate.LangAuto,
			Target:   translate.LangGujarati,
			Fallback: translate.FallbackEmpty.String(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.Config{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.gsarchive/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gsarchive", "config.yaml"), nil
}

// Load builds the configuration from defaults, then the YAML file at path,
// then environment variables. An empty path reads DefaultPath, which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	required := path != ""
	if !required {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if err := cfg.loadFile(path, required); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from GSARCHIVE_* variables.
func (c *Config) applyEnv() error {
	if val := os.Getenv(EnvBaseURL); val != "" {
		c.Site.BaseURL = val
	}
	if val := os.Getenv(EnvMode); val != "" {
		c.Site.Pagination.Mode = val
	}
	if val := os.Getenv(EnvDate); val != "" {
		c.ArchiveDate = val
	}
	if val := os.Getenv(EnvFeedURL); val != "" {
		c.Site.Pagination.FeedURL = val
	}
	if val := os.Getenv(EnvUserAgent); val != "" {
		c.Fetch.UserAgent = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv(EnvAddr); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv(EnvTranslateEndpoint); val != "" {
		c.Translate.Endpoint = val
	}

	if err := envInt(EnvMaxPages, &c.Site.Pagination.MaxPages); err != nil {
		return err
	}
	if err := envInt(EnvPageCap, &c.Site.Pagination.PageCap); err != nil {
		return err
	}
	if err := envInt(EnvWorkers, &c.Site.Pagination.Workers); err != nil {
		return err
	}
	if val := os.Getenv(EnvRetries); val != "" {
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRetries, err)
		}
		c.Fetch.Retries = n
	}
	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Fetch.Timeout = d
	}

	return nil
}

func envInt(key string, dst *int) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// CrawlSite returns the crawl configuration with the archive date applied.
func (c *Config) CrawlSite() (scraper.SiteConfig, error) {
	site := c.Site
	if c.ArchiveDate != "" {
		date, err := newsfeed.ParseDate(c.ArchiveDate)
		if err != nil {
			return scraper.SiteConfig{}, fmt.Errorf("invalid archive date: %w", err)
		}
		site.Pagination.Date = &date
	}
	return site, nil
}

// Validate checks that the configuration can run a crawl and a search.
func (c *Config) Validate() error {
	site, err := c.CrawlSite()
	if err != nil {
		return err
	}
	if err := site.Validate(); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if _, err := translate.ParseFallback(c.Translate.Fallback); err != nil {
		return err
	}
	return nil
}

// NewFetcher builds the HTTP fetcher, wrapped in a retrying fetcher when
// retries are configured.
func (c *Config) NewFetcher(logger *zap.Logger) fetcher.Fetcher {
	base := fetcher.NewHTTPFetcher(
		fetcher.WithTimeout(c.Fetch.Timeout),
		fetcher.WithUserAgent(c.Fetch.UserAgent),
	)
	if c.Fetch.Retries == 0 {
		return base
	}

	policy := fetcher.DefaultRetryPolicy()
	policy.MaxRetries = c.Fetch.Retries
	return fetcher.NewRetrying(base, policy, logger)
}

// NewTranslator returns the query translator, or nil when translation is
// disabled.
func (c *Config) NewTranslator(f fetcher.Fetcher) translate.Translator {
	if !c.Translate.Enabled {
		return nil
	}
	return translate.NewGoogleTranslator(f, c.Translate.Endpoint)
}

// TranslateOptions returns the options for translate.Resolve.
func (c *Config) TranslateOptions() (translate.Options, error) {
	fallback, err := translate.ParseFallback(c.Translate.Fallback)
	if err != nil {
		return translate.Options{}, err
	}
	return translate.Options{
		Source:   c.Translate.Source,
		Target:   c.Translate.Target,
		Fallback: fallback,
		Script:   c.Site.ArticleConfig.ScriptTable(),
	}, nil
}
