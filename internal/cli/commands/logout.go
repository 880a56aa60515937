package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomly-dev/roomly/internal/cli/cookies"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(serverAlias, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runLogout(serverAlias string, out io.Writer) error {
	api, err := newAPISession(serverAlias, cookies.Keyring)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Fire-and-forget: the cached session is invalidated no matter
	// what the backend answered.
	if err := api.client.LogOut(ctx); err != nil {
		fmt.Fprintf(out, "⚠ Logout request failed: %v\n", err)
	}

	if _, err := api.store.Refresh(ctx); err != nil {
		fmt.Fprintf(out, "⚠ Failed to refresh session: %v\n", err)
	}

	// Drop the persisted cookies so the next invocation starts clean
	if err := api.jar.Clear(); err != nil {
		fmt.Fprintf(out, "⚠ Failed to clear stored cookies: %v\n", err)
	}

	fmt.Fprintln(out, "✓ Logged out")
	return nil
}
