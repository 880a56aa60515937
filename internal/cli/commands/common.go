package commands

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/roomly-dev/roomly/internal/cli/client"
	"github.com/roomly-dev/roomly/internal/cli/config"
	"github.com/roomly-dev/roomly/internal/cli/cookies"
	"github.com/roomly-dev/roomly/internal/cli/serverselect"
	"github.com/roomly-dev/roomly/internal/cli/session"
	"github.com/roomly-dev/roomly/internal/logger"
)

// apiSession bundles everything a command needs to talk to one API
// server: the client, its persistent cookie jar and the shared session
// store. Tests build it by hand against httptest servers.
type apiSession struct {
	server *config.Server
	jar    *cookies.Jar
	client *client.Client
	store  *session.Store
}

// newAPISession resolves the target server from config and wires up a
// client with persisted cookies and a session store over it.
func newAPISession(serverAlias string, cookieStore cookies.Store) (*apiSession, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'roomly init' to create a configuration file", err)
	}

	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid API URL", config.ConfigFileName)
	}

	return buildAPISession(server, cookieStore)
}

func buildAPISession(server *config.Server, cookieStore cookies.Store) (*apiSession, error) {
	jar, err := cookies.NewJar(server.URL, cookieStore)
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger()

	apiClient, err := client.New(server.URL, jar, log)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(apiClient.Me, log)

	return &apiSession{
		server: server,
		jar:    jar,
		client: apiClient,
		store:  store,
	}, nil
}

// persistCookies saves the jar after a mutating call; a failure is not
// fatal (the current invocation keeps working, only the next one loses
// the session).
func (a *apiSession) persistCookies(out io.Writer) {
	if err := a.jar.Persist(); err != nil {
		fmt.Fprintf(out, "⚠ Could not persist session cookies: %v\n", err)
	}
}

// consoleNotifier is the terminal stand-in for the UI's toasts
type consoleNotifier struct {
	out io.Writer
}

func (n *consoleNotifier) Success(title, message string) {
	fmt.Fprintf(n.out, "✓ %s %s\n", title, message)
}

func (n *consoleNotifier) Failure(title, message string) {
	fmt.Fprintf(n.out, "✗ %s %s\n", title, message)
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
