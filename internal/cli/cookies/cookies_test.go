package cookies

import (
	"net/http"
	"net/url"
	"testing"
)

// memoryStore is an in-memory Store for tests
type memoryStore struct {
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Save(host string, data []byte) error {
	m.data[host] = data
	return nil
}

func (m *memoryStore) Load(host string) ([]byte, error) {
	return m.data[host], nil
}

func (m *memoryStore) Delete(host string) error {
	delete(m.data, host)
	return nil
}

const testAPIURL = "http://api.roomly.test"

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// TestJar_PersistAndReload verifies a session survives a process
// restart: persist with one jar, load into a fresh one
func TestJar_PersistAndReload(t *testing.T) {
	store := newMemoryStore()
	u := mustURL(t, testAPIURL)

	jar, err := NewJar(testAPIURL, store)
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}

	jar.SetCookies(u, []*http.Cookie{
		{Name: "sessionid", Value: "s3cret", Path: "/"},
		{Name: "csrftoken", Value: "tok-1", Path: "/"},
	})
	if err := jar.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	// New jar, same store: simulates the next CLI invocation
	reloaded, err := NewJar(testAPIURL, store)
	if err != nil {
		t.Fatalf("NewJar (reload) failed: %v", err)
	}

	cookies := reloaded.Cookies(u)
	if got := cookieValue(cookies, "sessionid"); got != "s3cret" {
		t.Errorf("expected sessionid to survive, got %q", got)
	}
	if got := cookieValue(cookies, "csrftoken"); got != "tok-1" {
		t.Errorf("expected csrftoken to survive, got %q", got)
	}
}

// TestJar_ClearWipesMemoryAndStore
func TestJar_ClearWipesMemoryAndStore(t *testing.T) {
	store := newMemoryStore()
	u := mustURL(t, testAPIURL)

	jar, err := NewJar(testAPIURL, store)
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}

	jar.SetCookies(u, []*http.Cookie{{Name: "sessionid", Value: "s3cret", Path: "/"}})
	if err := jar.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	if err := jar.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if cookies := jar.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected empty jar after Clear, got %v", cookies)
	}
	if _, ok := store.data[u.Host]; ok {
		t.Error("expected persisted copy to be deleted")
	}
}

// TestNewJar_CorruptBlobIsDropped verifies a damaged keychain entry
// degrades to an empty jar instead of an error
func TestNewJar_CorruptBlobIsDropped(t *testing.T) {
	store := newMemoryStore()
	u := mustURL(t, testAPIURL)
	store.data[u.Host] = []byte("not json at all")

	jar, err := NewJar(testAPIURL, store)
	if err != nil {
		t.Fatalf("NewJar failed on corrupt blob: %v", err)
	}
	if cookies := jar.Cookies(u); len(cookies) != 0 {
		t.Errorf("expected empty jar, got %v", cookies)
	}
}

// TestNewJar_EmptyStore
func TestNewJar_EmptyStore(t *testing.T) {
	jar, err := NewJar(testAPIURL, newMemoryStore())
	if err != nil {
		t.Fatalf("NewJar failed: %v", err)
	}
	if cookies := jar.Cookies(mustURL(t, testAPIURL)); len(cookies) != 0 {
		t.Errorf("expected empty jar, got %v", cookies)
	}
}
