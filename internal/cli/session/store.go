// Package session caches the backend's answer to "who is the current
// user" so every consumer shares one fetch per invalidation cycle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomly-dev/roomly/internal/cli/client"
)

const refreshTimeout = 30 * time.Second

// FetchFunc fetches the current user from the backend. An error means
// "no usable session" (network failure, 401, 403); the store treats all
// of them as the logged-out state, never as a fault.
type FetchFunc func(ctx context.Context) (*client.User, error)

// State is the cached view of the current session
type State struct {
	User     *client.User
	LoggedIn bool
}

func (s State) equal(other State) bool {
	if s.LoggedIn != other.LoggedIn {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == other.User
	}
	return s.User.PK == other.User.PK
}

// Store is a shared cache of the current session. Get fetches lazily,
// Invalidate discards the cache after a mutation, and subscribers are
// notified when the cached state transitions.
//
// The cache and the backend's actual session state may diverge between
// an invalidation and the refetch completing; consumers must tolerate
// that window.
type Store struct {
	fetch  FetchFunc
	logger zerolog.Logger

	mu         sync.Mutex
	state      State
	valid      bool
	populated  bool   // set on first commit, never cleared by invalidation
	gen        uint64 // bumped by every invalidation
	fetching   bool
	fetchDone  chan struct{}
	refreshing bool
	nextSubID  int
	subs       map[int]func(State)
}

// NewStore creates a session store backed by fetch
func NewStore(fetch FetchFunc, logger zerolog.Logger) *Store {
	return &Store{
		fetch:  fetch,
		logger: logger,
		subs:   make(map[int]func(State)),
	}
}

// Get returns the cached session state, fetching it if the cache is
// cold or invalidated. Concurrent callers share one in-flight fetch; a
// result fetched under a stale generation is discarded and retried, so
// racing invalidations still converge to one correct terminal value.
// The only error Get returns is the context's.
func (s *Store) Get(ctx context.Context) (State, error) {
	s.mu.Lock()
	for {
		if s.valid {
			state := s.state
			s.mu.Unlock()
			return state, nil
		}

		if s.fetching {
			done := s.fetchDone
			s.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return State{}, ctx.Err()
			}
			s.mu.Lock()
			continue
		}

		s.fetching = true
		s.fetchDone = make(chan struct{})
		gen := s.gen
		s.mu.Unlock()

		state := s.fetchState(ctx)

		s.mu.Lock()
		s.fetching = false
		close(s.fetchDone)

		if gen != s.gen {
			// Invalidated while the fetch was in flight; the result is
			// stale. Loop and fetch again.
			continue
		}

		s.commit(state)
		s.mu.Unlock()
		return state, nil
	}
}

// Invalidate discards the cached session and schedules a background
// refetch. Safe to call repeatedly; overlapping invalidations collapse
// into the refetch loop already running (at-least-once semantics).
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.valid = false
	start := !s.refreshing
	if start {
		s.refreshing = true
	}
	s.mu.Unlock()

	if start {
		go s.backgroundRefresh()
	}
}

// Refresh invalidates and refetches synchronously. Mutation flows that
// navigate afterwards use this so the next view never reads stale
// session state.
func (s *Store) Refresh(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.gen++
	s.valid = false
	s.mu.Unlock()

	return s.Get(ctx)
}

// Subscribe registers fn to be called whenever the cached state
// transitions. It returns an unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// fetchState maps every fetch failure to the logged-out state; absence
// of a session is an expected outcome, not an error.
func (s *Store) fetchState(ctx context.Context) State {
	user, err := s.fetch(ctx)
	if err != nil || user == nil {
		if err != nil {
			s.logger.Debug().Err(err).Msg("session fetch failed, treating as logged out")
		}
		return State{}
	}
	return State{User: user, LoggedIn: true}
}

// commit stores state and notifies subscribers of a transition. An
// invalidated cache landing on the same value it held before is not a
// transition; only the very first population always counts. Callers
// hold s.mu.
func (s *Store) commit(state State) {
	changed := !s.populated || !s.state.equal(state)
	s.state = state
	s.valid = true
	s.populated = true

	if !changed {
		return
	}
	for _, fn := range s.subs {
		go fn(state)
	}
}

func (s *Store) backgroundRefresh() {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		_, err := s.Get(ctx)
		cancel()
		if err != nil {
			s.logger.Debug().Err(err).Msg("session refresh cancelled")
		}

		s.mu.Lock()
		if s.valid || err != nil {
			s.refreshing = false
			s.mu.Unlock()
			return
		}
		// An Invalidate landed between the commit and this check, with
		// no new refresh goroutine to pick it up. Go around again.
		s.mu.Unlock()
	}
}
