package main

import (
	"fmt"
	"time"

	"github.com/dalemusser/ideahub/internal/app/system/identity"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		c      identity.Caller
		secret string
		issuer string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local development",
		Long: `token signs an HS256 bearer token the way the identity provider would.
Use it against a dev server configured with the same jwt_secret.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.UserID == "" {
				return fmt.Errorf("--user is required")
			}
			if secret == "" {
				return fmt.Errorf("--secret or IDEAHUB_JWT_SECRET is required")
			}
			if c.DisplayName == "" {
				c.DisplayName = c.UserID
			}
			tok, err := identity.NewVerifier(secret, issuer).Issue(c, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.UserID, "user", "", "Subject (user id)")
	cmd.Flags().StringVar(&c.DisplayName, "name", "", "Display name (default: the user id)")
	cmd.Flags().StringVar(&c.Email, "email", "", "Email claim")
	cmd.Flags().StringVar(&c.Username, "username", "", "Username claim")
	cmd.Flags().StringVar(&secret, "secret", envOr("IDEAHUB_JWT_SECRET", ""), "HS256 signing secret")
	cmd.Flags().StringVar(&issuer, "issuer", envOr("IDEAHUB_JWT_ISSUER", ""), "Issuer claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
