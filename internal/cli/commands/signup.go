package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomly-dev/roomly/internal/cli/client"
	"github.com/roomly-dev/roomly/internal/cli/cookies"
)

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var payload client.SignUpPayload
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Roomly account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(serverAlias, payload, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&payload.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&payload.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&payload.Username, "username", "", "Username (at least 3 characters)")
	cmd.Flags().StringVar(&payload.Password, "password", "", "Password (at least 8 characters, will prompt if not provided)")

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runSignup(serverAlias string, payload client.SignUpPayload, out io.Writer) error {
	if payload.Password == "" {
		var err error
		payload.Password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	api, err := newAPISession(serverAlias, cookies.Keyring)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := api.client.SignUp(ctx, payload); err != nil {
		var validationErr *client.ValidationError
		if errors.As(err, &validationErr) {
			// Field-level feedback, the CLI's version of inline form errors
			fmt.Fprintln(out, "Please fix the following and try again:")
			for field, message := range validationErr.Fields {
				fmt.Fprintf(out, "  - %s %s\n", field, message)
			}
			return fmt.Errorf("signup aborted")
		}

		var domainErr *client.DomainError
		if errors.As(err, &domainErr) {
			return fmt.Errorf("signup failed: %s", domainErr.Message)
		}
		return fmt.Errorf("signup failed: %w", err)
	}

	api.persistCookies(out)

	// Signup opens a session; refresh so the account is visible before
	// the next command runs.
	state, err := api.store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	fmt.Fprintln(out, "✓ Account created!")
	if state.LoggedIn {
		fmt.Fprintf(out, "  User: %s (%s)\n", state.User.Name, state.User.Username)
	}

	return nil
}
