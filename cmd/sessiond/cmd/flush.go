package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete expired sessions once",
	Long: `Delete expired sessions from the configured store and exit.

Meant for cron or a Kubernetes CronJob when the serve command is not the
one owning the store. Stores that expire records natively (redis) have
nothing to flush.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, _, err := openConfiguredBackend(ctx)
		if err != nil {
			return err
		}
		defer b.close()

		flusher, ok := b.store.(session.Flusher)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "store %q expires sessions on its own, nothing to flush\n", b.name)
			return nil
		}
		if err := session.NewSweeper(flusher, 0, session.WithSweeperLogger(appLogger)).Sweep(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "expired sessions flushed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
