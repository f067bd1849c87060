package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/auth"
	"github.com/lifetree/lifetree/pkg/errors"
)

// tokenCommand creates the token command, which issues an API access token
// signed with the server secret. It is meant for development and scripts;
// the web frontend gets its tokens from the login flow.
func (c *CLI) tokenCommand() *cobra.Command {
	var (
		owner string
		email string
		name  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateID("owner", owner); err != nil {
				return err
			}
			if ttl == 0 {
				ttl = c.Config.Server.TokenTTL.Duration
			}
			issuer, err := auth.NewIssuer(c.Config.Server.JWTSecret, ttl)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.jwt_secret is required (or set LIFETREE_JWT_SECRET)")
			}
			token, err := issuer.Issue(auth.Claims{Email: email, Name: name}.For(owner))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "user ID the token is issued for")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&name, "name", "", "name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: server.token_ttl)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}
