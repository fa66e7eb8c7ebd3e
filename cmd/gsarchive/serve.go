package main

import (
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/api"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/logging"
	"github.com/Mokshaa-Joshi/Gujarat-Samachar-Archive-Scrapping/metrics"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes crawling and searching over HTTP:

  POST /api/v1/crawl      run a crawl and keep its articles in memory
  GET  /api/v1/crawl      summary of the last crawl
  GET  /api/v1/articles   search the last crawl (q, date, fields, fallback)
  GET  /api/v1/config     effective site configuration
  GET  /metrics           Prometheus metrics
  GET  /healthz           health check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			site, err := crawlSite(cfg)
			if err != nil {
				return err
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

			if !cfg.Logging.Development {
				gin.SetMode(gin.ReleaseMode)
			}

			f := cfg.NewFetcher(logger)
			server := api.NewServer(api.Options{
				Site:             site,
				Fetcher:          f,
				Translator:       cfg.NewTranslator(f),
				TranslateOptions: translateOpts,
				Logger:           logger,
				Metrics:          metrics.New(nil),
			})

			return server.Run(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")

	return cmd
}
