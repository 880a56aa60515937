package oauthflow

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestListener_EndToEnd drives the loopback landing the way a browser
// redirect would: hit the callback URL, watch Wait return the terminal
// state
func TestListener_EndToEnd(t *testing.T) {
	var exchanges int32
	f := newFixture(func(ctx context.Context, code string) (int, error) {
		atomic.AddInt32(&exchanges, 1)
		return 200, nil
	})

	listener, err := NewListener("127.0.0.1:0", f.handler)
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}

	type waitResult struct {
		state State
		err   error
	}
	results := make(chan waitResult, 1)
	go func() {
		state, err := listener.Wait(context.Background())
		results <- waitResult{state, err}
	}()

	// Give Serve a moment to pick up the already-bound listener
	time.Sleep(20 * time.Millisecond)

	resp, err := http.Get(listener.RedirectURI() + "?code=abc123")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from the landing page, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Welcome") {
		t.Errorf("expected a welcome page, got: %s", body)
	}

	select {
	case result := <-results:
		if result.err != nil {
			t.Fatalf("Wait returned error: %v", result.err)
		}
		if result.state != StateSuccess {
			t.Errorf("expected StateSuccess, got %v", result.state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait never returned after the callback")
	}

	if got := atomic.LoadInt32(&exchanges); got != 1 {
		t.Errorf("expected 1 exchange, got %d", got)
	}
}

// TestListener_WaitHonorsContext verifies an abandoned flow unblocks
// when the deadline passes
func TestListener_WaitHonorsContext(t *testing.T) {
	f := newFixture(func(ctx context.Context, code string) (int, error) {
		return 200, nil
	})

	listener, err := NewListener("127.0.0.1:0", f.handler)
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = listener.Wait(ctx)
	if err == nil {
		t.Fatal("expected a context error from an abandoned flow")
	}
}

// TestListener_RedirectURI
func TestListener_RedirectURI(t *testing.T) {
	f := newFixture(nil)
	listener, err := NewListener("127.0.0.1:0", f.handler)
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.shutdown()

	uri := listener.RedirectURI()
	if !strings.HasPrefix(uri, "http://127.0.0.1:") {
		t.Errorf("expected loopback redirect URI, got %s", uri)
	}
	if !strings.HasSuffix(uri, "/auth/github/callback") {
		t.Errorf("expected the provider callback path, got %s", uri)
	}
}
