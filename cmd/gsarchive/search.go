package main

import (
	"fmt"
	"strings"

	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/logging"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/newsfeed"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/search"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/translate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type searchOptions struct {
	crawl       crawlFlags
	date        string
	fields      string
	noTranslate bool
	fallback    string
	format      string
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Crawl the archive and print the articles matching a query",
		Long: `Search crawls the archive, translates the query into Gujarati and prints
the articles whose title, summary or content contain it.

A query already written in Gujarati is used as is. When translation fails
the --fallback policy decides what to search for: "empty" drops the text
criterion, "original" searches for the untranslated text and "none"
returns no articles.`,
		Example: `  gsarchive search rain
  gsarchive search "વરસાદ" --date 2024-03-01
  gsarchive search election --fields title --fallback none`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, global, opts, strings.Join(args, " "))
		},
	}

	opts.crawl.register(cmd)
	cmd.Flags().StringVar(&opts.date, "date", "", "only articles published on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.fields, "fields", "", "comma-separated fields to match: title, summary, content, all")
	cmd.Flags().BoolVar(&opts.noTranslate, "no-translate", false, "search the query text as typed")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "on translation failure: empty, original or none")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "output format: table, json, compact")

	return cmd
}

func runSearch(cmd *cobra.Command, global *globalOptions, opts *searchOptions, text string) error {
	if err := validFormat(opts.format); err != nil {
		return err
	}

	var date *newsfeed.Date
	if opts.date != "" {
		d, err := newsfeed.ParseDate(opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date: must be YYYY-MM-DD")
		}
		date = &d
	}

	fields, err := search.ParseFields(opts.fields)
	if err != nil {
		return fmt.Errorf("invalid --fields: %w", err)
	}

	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	opts.crawl.apply(cmd, cfg)
	if opts.fallback != "" {
		cfg.Translate.Fallback = opts.fallback
	}
	if opts.noTranslate {
		cfg.Translate.Enabled = false
	}

	translateOpts, err := cfg.TranslateOptions()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	result, err := runCrawl(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if err := reportFailure(stderr, result); err != nil {
		return err
	}

	translator := cfg.NewTranslator(cfg.NewFetcher(logger))
	resolution := translate.Resolve(cmd.Context(), translator, text, translateOpts)
	if resolution.Err != nil {
		logger.Warn("Query translation failed, using fallback",
			zap.String("query", text),
			zap.String("fallback", translateOpts.Fallback.String()),
			zap.Error(resolution.Err),
		)
		fmt.Fprintf(stderr, "Warning: translation failed, searching with fallback %q\n", translateOpts.Fallback)
	} else if resolution.Translated {
		fmt.Fprintf(stderr, "Searching for %q\n", resolution.Text)
	}

	articles := search.Search(result.Corpus, search.QueryFromResolution(resolution, date, fields))

	if len(articles) == 0 && opts.format != formatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "No articles found.")
		return nil
	}
	return printArticles(cmd.OutOrStdout(), opts.format, articles, result)
}
