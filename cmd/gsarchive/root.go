package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/config"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/discovery"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/scraper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errCrawlFailed is returned after the warnings of a failed crawl have been
// printed, so main only sets the exit code.
var errCrawlFailed = errors.New("crawl failed")

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gsarchive",
		Short: "Crawl and search the Gujarat Samachar archive",
		Long: `gsarchive crawls the Gujarat Samachar archive listing pages, extracts the
Gujarati text of each article and searches the result by text and date.

Configuration is read from ~/.gsarchive/config.yaml (or --config), then from
GSARCHIVE_* environment variables, then from command-line flags. A .env file
in the working directory is loaded first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.gsarchive/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newCrawlCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// loadConfig reads the configuration and applies the global flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

// crawlFlags are the pagination overrides shared by crawl and search.
type crawlFlags struct {
	mode    string
	pages   int
	pageCap int
	date    string
	feed    string
	workers int
}

func (f *crawlFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "pagination mode: bounded, follow, date or feed")
	cmd.Flags().IntVar(&f.pages, "pages", 0, "listing pages to visit in bounded mode")
	cmd.Flags().IntVar(&f.pageCap, "page-cap", 0, "stop follow and date modes after this many pages (0 = no cap)")
	cmd.Flags().StringVar(&f.date, "archive-date", "", "archive date for date mode (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.feed, "feed", "", "feed URL for feed mode")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "articles fetched at once per listing page")
}

// apply copies the flags the user set onto cfg.
func (f *crawlFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.mode != "" {
		cfg.Site.Pagination.Mode = f.mode
	}
	if cmd.Flags().Changed("pages") {
		cfg.Site.Pagination.MaxPages = f.pages
	}
	if cmd.Flags().Changed("page-cap") {
		cfg.Site.Pagination.PageCap = f.pageCap
	}
	if f.date != "" {
		cfg.ArchiveDate = f.date
	}
	if f.feed != "" {
		cfg.Site.Pagination.FeedURL = f.feed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Site.Pagination.Workers = f.workers
	}
}

// runCrawl validates cfg and runs one crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*discovery.Result, error) {
	site, err := crawlSite(cfg)
	if err != nil {
		return nil, err
	}

	crawler := discovery.NewCrawler(site, cfg.NewFetcher(logger), discovery.WithLogger(logger))
	result, err := crawler.Crawl(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawl interrupted: %w", err)
	}
	return result, nil
}

func crawlSite(cfg *config.Config) (scraper.SiteConfig, error) {
	if err := cfg.Validate(); err != nil {
		return scraper.SiteConfig{}, err
	}
	return cfg.CrawlSite()
}

// reportFailure prints the warnings of a failed crawl and returns
// errCrawlFailed, or nil when the crawl produced any listing page.
func reportFailure(w io.Writer, result *discovery.Result) error {
	if result.Status() != discovery.StatusFailed {
		printWarnings(w, result)
		return nil
	}
	fmt.Fprintln(w, "Error: the crawl did not read any listing page.")
	printWarnings(w, result)
	return errCrawlFailed
}
