package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

// ErrNotListable is returned when the configured store cannot enumerate ids.
var ErrNotListable = errors.New("sessiond.store_not_listable")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the ids of live sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, _, err := openConfiguredBackend(ctx)
		if err != nil {
			return err
		}
		defer b.close()

		lister, ok := b.store.(session.Lister)
		if !ok {
			return ErrNotListable
		}
		ids, err := lister.IDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
