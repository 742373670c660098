package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-sync/pkg/jwt"
)

func newTokenCommand(d *deps) *cobra.Command {
	var expiry time.Duration

	cmd := &cobra.Command{
		Use:   "token <account-id>",
		Short: "Issue an access token for the client API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.LoadConfig()
			if err != nil {
				return err
			}
			if expiry == 0 {
				expiry = cfg.JWT.AccessExpiry
			}
			token, err := jwt.NewManager(cfg.JWT.AccessSecret, expiry).GenerateAccessToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(d.Out, token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "Token lifetime (default JWT_ACCESS_EXPIRY)")
	return cmd
}
