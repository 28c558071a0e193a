// Package cmd provides the sessiond command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/httpsession/pkg/config"
	"github.com/dmitrymomot/httpsession/pkg/logger"
	"github.com/dmitrymomot/httpsession/pkg/requestid"
	"github.com/dmitrymomot/httpsession/pkg/session"
)

var envFiles []string

var appLogger = slog.New(slog.DiscardHandler)

var rootCmd = &cobra.Command{
	Use:   "sessiond",
	Short: "sessiond - signed cookie sessions over pluggable stores",
	Long: `sessiond runs and maintains server-side HTTP sessions identified by a
signed, time-stamped cookie.

Configuration is read from the environment (and an optional .env file):
  SIGNER_SECRETS      comma separated secrets, the first one signs
  SESSION_STORE       memory, file, redis, postgres, mongo or sqlite
  SESSION_TTL         session lifespan, e.g. 30m
  HTTP_ADDR           listen address of the serve command

Commands:
  serve       Serve the demo application behind the session middleware
  flush       Delete expired sessions once (for cron)
  list        Print the ids of live sessions
  token       Sign or verify session cookie values
  version     Print version information`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFiles...); err != nil {
			return err
		}
		var cfg logger.Config
		if err := config.Load(&cfg); err != nil {
			return err
		}
		appLogger = logger.NewFromConfig(cfg,
			logger.WithOutput(cmd.ErrOrStderr()),
			logger.WithContextExtractors(
				requestid.LoggerExtractor(),
				session.LogExtractor(nil),
			),
		)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "additional .env files, later files win")
}
