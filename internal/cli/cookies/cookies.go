// Package cookies provides the persistent cookie jar the CLI uses to
// keep its API session alive across invocations. Cookies are serialized
// into the OS keychain/credential manager per API host.
package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/zalando/go-keyring"
)

const service = "roomly-cli"

// Store persists serialized cookies per API host.
// This allows us to mock the keyring in tests.
type Store interface {
	Save(host string, data []byte) error
	Load(host string) ([]byte, error)
	Delete(host string) error
}

// keyringStore implements Store using the OS keychain
type keyringStore struct{}

// Keyring is the default keychain-backed store
var Keyring Store = &keyringStore{}

func keyringKey(host string) string {
	return fmt.Sprintf("cookies-%s", host)
}

func (k *keyringStore) Save(host string, data []byte) error {
	if err := keyring.Set(service, keyringKey(host), string(data)); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	return nil
}

func (k *keyringStore) Load(host string) ([]byte, error) {
	data, err := keyring.Get(service, keyringKey(host))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	return []byte(data), nil
}

func (k *keyringStore) Delete(host string) error {
	if err := keyring.Delete(service, keyringKey(host)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete cookies: %w", err)
	}
	return nil
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar is an http.CookieJar whose cookies for the API URL survive
// process restarts. Persist must be called after mutating requests;
// Clear wipes both memory and the persisted copy (logout).
type Jar struct {
	inner  *cookiejar.Jar
	store  Store
	apiURL *url.URL
}

// NewJar builds a jar for the given API base URL, pre-loaded with any
// cookies persisted by a previous run.
func NewJar(apiURL string, store Store) (*Jar, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	jar := &Jar{inner: inner, store: store, apiURL: u}

	data, err := store.Load(u.Host)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var saved []savedCookie
		if err := json.Unmarshal(data, &saved); err == nil {
			cookies := make([]*http.Cookie, 0, len(saved))
			for _, sc := range saved {
				cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
			}
			inner.SetCookies(u, cookies)
		}
		// A corrupt blob is dropped; the server will just see an
		// unauthenticated client.
	}

	return jar, nil
}

// SetCookies implements http.CookieJar
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Persist writes the jar's cookies for the API URL to the store
func (j *Jar) Persist() error {
	cookies := j.inner.Cookies(j.apiURL)
	saved := make([]savedCookie, 0, len(cookies))
	for _, cookie := range cookies {
		saved = append(saved, savedCookie{Name: cookie.Name, Value: cookie.Value})
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	return j.store.Save(j.apiURL.Host, data)
}

// Clear drops all cookies and deletes the persisted copy
func (j *Jar) Clear() error {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to reset cookie jar: %w", err)
	}
	j.inner = inner

	return j.store.Delete(j.apiURL.Host)
}
