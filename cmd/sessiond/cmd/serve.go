package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/httpsession/pkg/config"
	"github.com/dmitrymomot/httpsession/pkg/httpserver"
	"github.com/dmitrymomot/httpsession/pkg/session"
	"github.com/dmitrymomot/httpsession/pkg/signer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo application behind the session middleware",
	Long: `Serve a small application behind the session middleware.

Routes:
  GET  /          count visits in the session
  GET  /session   dump the session as JSON
  POST /session   store the posted form fields
  POST /logout    destroy the session
  GET  /healthz   liveness probe
  GET  /readyz    readiness probe, checks the store connection
  GET  /metrics   Prometheus metrics

Stores that need sweeping are flushed every SESSION_SWEEP_INTERVAL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			sigCfg  signer.Config
			httpCfg httpserver.Config
		)
		if err := config.Load(&sigCfg); err != nil {
			return err
		}
		if err := config.Load(&httpCfg); err != nil {
			return err
		}
		sig, err := signer.NewFromConfig(sigCfg)
		if err != nil {
			return err
		}

		b, sessCfg, err := openConfiguredBackend(ctx)
		if err != nil {
			return err
		}
		defer b.close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := session.NewMetrics(reg)
		store := session.Instrument(b.store, metrics)

		manager, err := session.NewFromConfig(sessCfg, store, sig,
			session.WithLogger(appLogger),
			session.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}

		opts := []httpserver.Option{httpserver.WithLogger(appLogger)}
		if flusher, ok := store.(session.Flusher); ok && sessCfg.SweepInterval > 0 {
			sweeper := session.NewSweeper(flusher, sessCfg.SweepInterval,
				session.WithSweeperLogger(appLogger),
				session.WithSweeperMetrics(metrics),
			)
			opts = append(opts, httpserver.WithWorker(sweeper.Run))
		}

		server := httpserver.NewFromConfig(httpCfg, opts...)
		return server.Run(ctx, newRouter(manager, reg, appLogger, b.checks...))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
