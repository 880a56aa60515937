package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomly-dev/roomly/internal/cli/cookies"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(serverAlias, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runWhoami(serverAlias string, out io.Writer) error {
	api, err := newAPISession(serverAlias, cookies.Keyring)
	if err != nil {
		return err
	}

	state, err := api.store.Get(context.Background())
	if err != nil {
		return err
	}

	if !state.LoggedIn {
		fmt.Fprintln(out, "Not logged in.")
		fmt.Fprintln(out, "\nLog in with: roomly login")
		return nil
	}

	user := state.User
	fmt.Fprintf(out, "Logged in to %s (%s)\n\n", api.server.Alias, api.server.URL)
	fmt.Fprintf(out, "  Username: %s\n", user.Username)
	fmt.Fprintf(out, "  Name:     %s\n", user.Name)
	if user.Email != "" {
		fmt.Fprintf(out, "  Email:    %s\n", user.Email)
	}
	if user.IsHost {
		fmt.Fprintln(out, "  Role:     Host")
	}

	return nil
}
