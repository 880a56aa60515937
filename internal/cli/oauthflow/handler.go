// Package oauthflow drives the redirect-landing side of a social
// login: extract the provider-issued code from the callback query,
// exchange it with the backend, refresh the cached session and route
// the user onward.
package oauthflow

import (
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomly-dev/roomly/internal/cli/session"
)

// State is the callback handler's position in its lifecycle
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateExchanging
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateExchanging:
		return "exchanging"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Navigation targets after a terminal state
const (
	TargetHome  = "home"
	TargetLogin = "login"
)

// Notifier surfaces user-visible notifications (the CLI's stand-in for
// a toast).
type Notifier interface {
	Success(title, message string)
	Failure(title, message string)
}

// Sessions is the slice of the session store the handler needs
type Sessions interface {
	Refresh(ctx context.Context) (session.State, error)
}

// ExchangeFunc posts the provider code to the backend and reports the
// raw response status
type ExchangeFunc func(ctx context.Context, code string) (int, error)

// Handler consumes one provider redirect. One instance handles one
// landing: the latch makes re-invocations (a re-rendered landing page,
// a browser refresh) no-ops instead of duplicate code exchanges, which
// the provider would reject.
type Handler struct {
	provider Provider
	exchange ExchangeFunc
	sessions Sessions
	notify   Notifier
	navigate func(target string)
	logger   zerolog.Logger

	mu      sync.Mutex
	started bool
	state   State
}

// NewHandler builds a callback handler for one provider landing
func NewHandler(provider Provider, exchange ExchangeFunc, sessions Sessions, notify Notifier, navigate func(string), logger zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		exchange: exchange,
		sessions: sessions,
		notify:   notify,
		navigate: navigate,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the handler's current state
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// HandleCallback runs the state machine over the callback query and
// returns the resulting state. Only the first invocation does anything;
// later ones return the state reached so far.
func (h *Handler) HandleCallback(ctx context.Context, query url.Values) State {
	h.mu.Lock()
	if h.started {
		state := h.state
		h.mu.Unlock()
		h.logger.Debug().Stringer("state", state).Msg("callback re-invoked, ignoring")
		return state
	}
	h.started = true
	h.state = StateExtracting
	h.mu.Unlock()

	code := query.Get("code")
	if code == "" {
		// The provider redirected without consent. Expected absence:
		// nothing to surface, nothing to exchange.
		h.logger.Debug().Str("provider", h.provider.Name).Msg("callback without code")
		h.setState(StateIdle)
		return StateIdle
	}

	h.setState(StateExchanging)

	status, err := h.exchange(ctx, code)
	if err != nil || status != h.provider.SuccessStatus {
		h.logger.Warn().
			Err(err).
			Int("status", status).
			Str("provider", h.provider.Name).
			Msg("code exchange failed")
		h.notify.Failure("Login failed", "Unable to log in. Please try again.")
		h.navigate(TargetLogin)
		h.setState(StateFailure)
		return StateFailure
	}

	h.notify.Success("Welcome!", "Happy to have you back!")

	// Refresh before navigating so the next view already reflects the
	// authenticated session.
	if _, err := h.sessions.Refresh(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("session refresh after login failed")
	}

	h.navigate(TargetHome)
	h.setState(StateSuccess)
	return StateSuccess
}

func (h *Handler) setState(state State) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}
