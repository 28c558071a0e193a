package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/httpsession/pkg/config"
	"github.com/dmitrymomot/httpsession/pkg/session"
	"github.com/dmitrymomot/httpsession/pkg/signer"
)

var tokenMaxAge time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign or verify session cookie values",
	Long: `Sign or verify session cookie values with the configured SIGNER_* settings.

Example:
  sessiond token sign "$(uuidgen)"
  sessiond token verify 0f8fad5b-d9cb-469f-a165-70867728950e.YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM`,
}

var tokenSignCmd = &cobra.Command{
	Use:   "sign [session-id]",
	Short: "Print a signed cookie value for a session id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := loadSigner()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sig.Sign(args[0]))
		return nil
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify [cookie-value]",
	Short: "Verify a cookie value and print the session id and signing time",
	Long: `Verify a cookie value and print the session id and signing time.

The maximum age defaults to SESSION_TTL; pass --max-age 0 to skip the
expiry check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig, err := loadSigner()
		if err != nil {
			return err
		}

		maxAge := tokenMaxAge
		if !cmd.Flags().Changed("max-age") {
			var sessCfg session.Config
			if err := config.Load(&sessCfg); err != nil {
				return err
			}
			maxAge = session.NormalizeTTL(sessCfg.TTL)
		}

		id, signedAt, err := sig.VerifyTimestamp(args[0], maxAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, signedAt.UTC().Format(time.RFC3339))
		return nil
	},
}

func loadSigner() (*signer.Signer, error) {
	var cfg signer.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return signer.NewFromConfig(cfg)
}

func init() {
	tokenVerifyCmd.Flags().DurationVar(&tokenMaxAge, "max-age", 0, "maximum token age (default SESSION_TTL)")
	tokenCmd.AddCommand(tokenSignCmd, tokenVerifyCmd)
	rootCmd.AddCommand(tokenCmd)
}
