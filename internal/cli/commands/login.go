package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roomly-dev/roomly/internal/cli/client"
	"github.com/roomly-dev/roomly/internal/cli/config"
	"github.com/roomly-dev/roomly/internal/cli/cookies"
	"github.com/roomly-dev/roomly/internal/cli/oauthflow"
	"github.com/roomly-dev/roomly/internal/logger"
)

const socialLoginTimeout = 5 * time.Minute

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password, serverAlias, provider string
	var social bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Roomly server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if social || provider != "" {
				return runSocialLogin(serverAlias, provider, os.Stdout)
			}
			return runPasswordLogin(serverAlias, username, password, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set ROOMLY_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ROOMLY_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.Flags().StringVar(&provider, "provider", "", "Social login provider (github, kakao)")
	cmd.Flags().BoolVar(&social, "social", false, "Log in through an identity provider")

	return cmd
}

func runPasswordLogin(serverAlias, username, password string, out io.Writer) error {
	// Check for environment variables (useful for CI/CD)
	if username == "" {
		username = os.Getenv("ROOMLY_USERNAME")
	}
	if password == "" {
		password = os.Getenv("ROOMLY_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or ROOMLY_USERNAME env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		var err error
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	api, err := newAPISession(serverAlias, cookies.Keyring)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logging in to %s (%s)...\n", api.server.Alias, api.server.URL)

	ctx := context.Background()
	if err := api.client.LogIn(ctx, username, password); err != nil {
		var domainErr *client.DomainError
		if errors.As(err, &domainErr) {
			// The backend answered and rejected the credentials
			return fmt.Errorf("login failed: %s\nPlease check your username and password", domainErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	api.persistCookies(out)

	// Refetch before reporting so the printed identity is what the
	// next command will see.
	state, err := api.store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	if state.LoggedIn {
		fmt.Fprintf(out, "  User: %s (%s)\n", state.User.Name, state.User.Username)
		if state.User.IsHost {
			fmt.Fprintln(out, "  Role: Host")
		}
	}

	return nil
}

func runSocialLogin(serverAlias, providerName string, out io.Writer) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'roomly init' to create a configuration file", err)
	}

	if providerName == "" {
		providerName, err = promptProviderSelection()
		if err != nil {
			return err
		}
	}

	provider, err := resolveProvider(cfg, providerName)
	if err != nil {
		return err
	}

	api, err := newAPISession(serverAlias, cookies.Keyring)
	if err != nil {
		return err
	}

	notifier := &consoleNotifier{out: out}
	var target string

	exchange := func(ctx context.Context, code string) (int, error) {
		return api.client.ExchangeCode(ctx, provider.Name, code)
	}

	handler := oauthflow.NewHandler(provider, exchange, api.store, notifier, func(t string) {
		target = t
	}, logger.GetLogger())

	listener, err := oauthflow.NewListener("127.0.0.1:0", handler)
	if err != nil {
		return err
	}

	authURL := provider.AuthorizeURL(listener.RedirectURI())
	fmt.Fprintf(out, "Opening %s consent page...\n", provider.DisplayName)
	if err := openBrowser(authURL); err != nil {
		fmt.Fprintf(out, "⚠ Could not open browser automatically: %v\n", err)
		fmt.Fprintf(out, "Please visit: %s\n", authURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), socialLoginTimeout)
	defer cancel()

	state, err := listener.Wait(ctx)
	if err != nil {
		return fmt.Errorf("social login did not complete: %w", err)
	}

	if state != oauthflow.StateSuccess {
		if dest := webTarget(cfg, target); dest != "" {
			fmt.Fprintf(out, "Try again at %s\n", dest)
		}
		return fmt.Errorf("%s login failed", provider.DisplayName)
	}

	api.persistCookies(out)

	if dest := webTarget(cfg, target); dest != "" {
		fmt.Fprintf(out, "Continue at %s\n", dest)
	}

	return nil
}

func resolveProvider(cfg *config.Config, name string) (oauthflow.Provider, error) {
	switch name {
	case "github":
		if cfg.OAuth.GithubClientID == "" {
			return oauthflow.Provider{}, fmt.Errorf("github login is not configured: add oauth.github_client_id to %s", config.ConfigFileName)
		}
		return oauthflow.Github(cfg.OAuth.GithubClientID), nil
	case "kakao":
		if cfg.OAuth.KakaoClientID == "" {
			return oauthflow.Provider{}, fmt.Errorf("kakao login is not configured: add oauth.kakao_client_id to %s", config.ConfigFileName)
		}
		return oauthflow.Kakao(cfg.OAuth.KakaoClientID), nil
	default:
		return oauthflow.Provider{}, fmt.Errorf("unknown provider %q (expected github or kakao)", name)
	}
}

func promptProviderSelection() (string, error) {
	prompt := promptui.Select{
		Label: "Continue with",
		Items: []string{"github", "kakao"},
	}

	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("provider selection cancelled: %w", err)
	}
	return name, nil
}

// webTarget maps a navigation target onto the configured web frontend
func webTarget(cfg *config.Config, target string) string {
	if cfg.OAuth.WebURL == "" {
		return ""
	}
	if target == oauthflow.TargetLogin {
		return cfg.OAuth.WebURL + "/login"
	}
	return cfg.OAuth.WebURL
}

func promptPassword(label string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or ROOMLY_PASSWORD env var)")
	}

	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println() // New line after password input
	return string(bytePassword), nil
}
