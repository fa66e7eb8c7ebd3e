package main

import (
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/logging"
	"github.com/spf13/cobra"
)

func newCrawlCmd(global *globalOptions) *cobra.Command {
	var (
		flags  crawlFlags
		format string
		dedupe bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the archive and print every article",
		Example: `  gsarchive crawl --pages 2
  gsarchive crawl --mode follow --workers 4 --format json
  gsarchive crawl --mode date --archive-date 2024-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(format); err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)

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

			corpus := result.Corpus
			if dedupe {
				corpus = corpus.Dedupe()
			}

			if err := printArticles(cmd.OutOrStdout(), format, corpus, result); err != nil {
				return err
			}
			if format != formatJSON {
				printCrawlSummary(stderr, result)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table, json, compact")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "keep only the first article for each link")

	return cmd
}
