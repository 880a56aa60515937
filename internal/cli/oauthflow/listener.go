package oauthflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const resultPage = `<!DOCTYPE html>
<html>
<head><title>Roomly</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4rem;">
<h2>%s</h2>
<p>%s</p>
<p>You can close this tab and return to the terminal.</p>
</body>
</html>`

// Listener serves the provider redirect landing on a loopback address
// and feeds the query into the callback handler. It is the CLI
// equivalent of the browser app's confirm page.
type Listener struct {
	handler *Handler
	ln      net.Listener
	srv     *http.Server
	done    chan State
}

// NewListener binds the loopback address (use "127.0.0.1:0" for an
// ephemeral port) so RedirectURI is known before the browser is sent to
// the provider.
func NewListener(addr string, handler *Handler) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind callback listener: %w", err)
	}

	l := &Listener{
		handler: handler,
		ln:      ln,
		done:    make(chan State, 1),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(handler.provider.CallbackPath, l.serveCallback)

	l.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return l, nil
}

// RedirectURI returns the URI the provider should redirect back to
func (l *Listener) RedirectURI() string {
	return fmt.Sprintf("http://%s%s", l.ln.Addr().String(), l.handler.provider.CallbackPath)
}

// Wait serves the landing until the flow reaches a terminal state or
// ctx is done, then shuts the listener down and returns the final
// state.
func (l *Listener) Wait(ctx context.Context) (State, error) {
	serveErr := make(chan error, 1)
	go func() {
		if err := l.srv.Serve(l.ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	var state State
	select {
	case state = <-l.done:
	case err := <-serveErr:
		return StateIdle, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		l.shutdown()
		return StateIdle, ctx.Err()
	}

	l.shutdown()
	return state, nil
}

func (l *Listener) serveCallback(c *gin.Context) {
	state := l.handler.HandleCallback(c.Request.Context(), c.Request.URL.Query())

	c.Header("Content-Type", "text/html; charset=utf-8")
	switch state {
	case StateSuccess:
		c.String(http.StatusOK, resultPage, "Welcome!", "You are logged in.")
	case StateFailure:
		c.String(http.StatusOK, resultPage, "Login failed", "Unable to log in. Please try again.")
	default:
		// No code, or a duplicate invocation: nothing to report loudly
		c.String(http.StatusOK, resultPage, "Processing log in...", "Don't go anywhere.")
	}

	if state == StateSuccess || state == StateFailure {
		select {
		case l.done <- state:
		default:
		}
	}
}

func (l *Listener) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.srv.Shutdown(ctx)
}
