package cli

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/config"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/session"
)

// sessionStore opens the session store under the config directory.
func sessionStore() (*session.FileStore, error) {
	dir := config.Dir()
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "cannot determine config directory for sessions")
	}
	return session.NewFileStore(filepath.Join(dir, "sessions"))
}

// apiURLFlag returns the --api value or the configured store API URL.
func (c *CLI) apiURLFlag(apiURL string) (string, error) {
	if apiURL == "" {
		apiURL = c.Config.Store.APIURL
	}
	if err := errors.ValidateURL(apiURL); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "--api (or store.api_url) must be an http(s) URL")
	}
	return strings.TrimRight(apiURL, "/"), nil
}

// loginCommand stores an access token for the HTTP timeline store.
func (c *CLI) loginCommand() *cobra.Command {
	var apiURL, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an access token for the timeline API",
		Long: `Save an access token for the timeline API.

The token is read from --token, or from stdin when --token is "-" or
omitted. Commands that load timelines through the http store use the
saved token unless store.api_token is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := c.apiURLFlag(apiURL)
			if err != nil {
				return err
			}
			if token == "" || token == "-" {
				if token, err = readToken(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			sess, err := session.New(url, token)
			if err != nil {
				return err
			}
			st, err := sessionStore()
			if err != nil {
				return err
			}
			if err := st.Set(cmd.Context(), sess); err != nil {
				return err
			}

			who := sess.Owner
			if who == "" {
				who = "token"
			}
			printSuccess("Logged in to %s as %s", url, who)
			printDetail("Expires %s", sess.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "timeline API URL (default: store.api_url)")
	cmd.Flags().StringVar(&token, "token", "", `access token ("-" reads stdin)`)
	return cmd
}

// logoutCommand removes the saved token for an API.
func (c *CLI) logoutCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := c.apiURLFlag(apiURL)
			if err != nil {
				return err
			}
			st, err := sessionStore()
			if err != nil {
				return err
			}
			if err := st.Delete(cmd.Context(), session.IDFor(url)); err != nil {
				return err
			}
			_ = st.Cleanup(cmd.Context())
			printSuccess("Logged out of %s", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "timeline API URL (default: store.api_url)")
	return cmd
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no access token given")
	}
	return line, nil
}

// savedToken returns the stored access token for apiURL, or "" when there
// is none.
func savedToken(ctx context.Context, apiURL string) (string, error) {
	st, err := sessionStore()
	if err != nil {
		return "", err
	}
	sess, err := st.Get(ctx, session.IDFor(apiURL))
	if err != nil {
		if errors.Is(err, errors.ErrCodeSessionExpired) {
			return "", errors.New(errors.ErrCodeSessionExpired, "%s; run 'lifetree login' again", errors.UserMessage(err))
		}
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	return sess.AccessToken, nil
}
