package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly-dev/roomly/internal/config"
)

// apiFixture drives the server the way the CLI does: a cookie jar for
// the session, the csrftoken cookie echoed into the header on writes.
type apiFixture struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	base   *url.URL
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Addr:       ":0",
			CORSOrigin: "http://localhost:3000",
		},
		Database: config.DatabaseConfig{URL: ":memory:"},
	}

	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return &apiFixture{
		t:      t,
		srv:    srv,
		client: &http.Client{Jar: jar},
		base:   base,
	}
}

func (f *apiFixture) csrfToken() string {
	for _, cookie := range f.client.Jar.Cookies(f.base) {
		if cookie.Name == "csrftoken" {
			return cookie.Value
		}
	}
	return ""
}

// warmUp performs one safe request so the server mints a CSRF cookie
func (f *apiFixture) warmUp() {
	resp := f.get("/api/v1/rooms")
	resp.Body.Close()
}

func (f *apiFixture) get(path string) *http.Response {
	f.t.Helper()
	resp, err := f.client.Get(f.srv.URL + path)
	require.NoError(f.t, err)
	return resp
}

func (f *apiFixture) post(path string, body any, withCSRF bool) *http.Response {
	f.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, &buf)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if withCSRF {
		req.Header.Set("X-CSRFToken", f.csrfToken())
	}

	resp, err := f.client.Do(req)
	require.NoError(f.t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) signUp(username, password string) {
	f.t.Helper()
	resp := f.post("/api/v1/users/signup", map[string]string{
		"name":     "Test User",
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	}, true)
	defer resp.Body.Close()
	require.Equal(f.t, http.StatusOK, resp.StatusCode)
}

func TestCSRF_CookieMintedOnFirstResponse(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()
	assert.NotEmpty(t, f.csrfToken(), "expected a csrftoken cookie after the first response")
}

func TestCSRF_PostWithoutHeaderRejected(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.post("/api/v1/users/log-in", map[string]string{
		"username": "jane", "password": "whatever1",
	}, false)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "CSRF token missing or incorrect", body["error"])
}

func TestCSRF_PostWithWrongHeaderRejected(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(map[string]string{"username": "a", "password": "b"}))
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/v1/users/log-in", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRFToken", "forged-token")

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMe_AnonymousIsUnauthorized(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "authentication required", body["error"])
}

func TestSignUpLogInLogOutFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	// Sign up opens a session
	f.signUp("jane", "longenough")

	resp := f.get("/api/v1/users/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "jane", me["username"])
	assert.NotEmpty(t, me["pk"])

	// Log out closes it
	resp = f.post("/api/v1/users/logout", nil, true)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "bye", body["ok"])

	resp = f.get("/api/v1/users/me")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong password is a domain rejection
	resp = f.post("/api/v1/users/log-in", map[string]string{
		"username": "jane", "password": "wrongpassword",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "wrong username or password", body["error"])

	// Unknown username gets the same message as a wrong password
	resp = f.post("/api/v1/users/log-in", map[string]string{
		"username": "nobody", "password": "wrongpassword",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "wrong username or password", body["error"])

	// Correct credentials open a fresh session
	resp = f.post("/api/v1/users/log-in", map[string]string{
		"username": "jane", "password": "longenough",
	}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "welcome back!", body["ok"])

	resp = f.get("/api/v1/users/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()
	f.signUp("jane", "longenough")

	resp := f.post("/api/v1/users/signup", map[string]string{
		"name": "Other", "email": "other@example.com",
		"username": "jane", "password": "alsolongenough",
	}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "username already taken", body["error"])
}

func TestLogOut_AnonymousIsUnauthorized(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.post("/api/v1/users/logout", nil, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocialLogIn_MintsAndReusesAccount(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.post("/api/v1/users/github", map[string]string{"code": "abc123"}, true)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get("/api/v1/users/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeJSON[map[string]any](t, resp)
	firstPK := me["pk"]
	assert.Contains(t, me["username"], "github_")

	// The same code resolves to the same account
	resp = f.post("/api/v1/users/logout", nil, true)
	resp.Body.Close()

	resp = f.post("/api/v1/users/github", map[string]string{"code": "abc123"}, true)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get("/api/v1/users/me")
	me = decodeJSON[map[string]any](t, resp)
	assert.Equal(t, firstPK, me["pk"])
}

func TestSocialLogIn_MissingCode(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.post("/api/v1/users/kakao", map[string]string{}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "missing code", body["error"])
}

func TestLookupTables_Seeded(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.get("/api/v1/rooms/amenities")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	amenities := decodeJSON[[]map[string]any](t, resp)
	assert.NotEmpty(t, amenities)

	resp = f.get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	categories := decodeJSON[[]map[string]any](t, resp)
	assert.NotEmpty(t, categories)
	for _, category := range categories {
		assert.Equal(t, "rooms", category["kind"])
	}
}

func TestUploadRoom_RequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.post("/api/v1/rooms", map[string]any{"name": "Loft"}, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadRoom_FlowAndOwnership(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()
	f.signUp("hostess", "longenough")

	payload := map[string]any{
		"name": "Cozy hanok", "country": "South Korea", "city": "Jeonju",
		"price": 85, "rooms": 2, "toilets": 1,
		"address": "12-3 Hanok-gil", "pet_friendly": true,
		"kind": "entire_place", "amenities": []int{1, 2}, "category": 1,
	}

	resp := f.post("/api/v1/rooms", payload, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "Cozy hanok", created["name"])
	assert.Equal(t, true, created["is_owner"])
	pk, _ := created["pk"].(string)
	require.NotEmpty(t, pk)

	// The uploader became a host
	resp = f.get("/api/v1/users/me")
	me := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, true, me["is_host"])

	// The listing shows up in the list with ownership attached
	resp = f.get("/api/v1/rooms")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rooms := decodeJSON[[]map[string]any](t, resp)
	require.Len(t, rooms, 1)
	assert.Equal(t, pk, rooms[0]["pk"])
	assert.Equal(t, true, rooms[0]["is_owner"])

	// Detail view resolves relations
	resp = f.get(fmt.Sprintf("/api/v1/rooms/%s", pk))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decodeJSON[map[string]any](t, resp)
	assert.Equal(t, "Cozy hanok", detail["name"])

	// Reviews of a fresh listing are empty, not an error
	resp = f.get(fmt.Sprintf("/api/v1/rooms/%s/reviews", pk))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadRoom_UnknownCategoryAndKind(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()
	f.signUp("hostess", "longenough")

	base := map[string]any{
		"name": "Loft", "country": "Korea", "city": "Seoul",
		"price": 10, "address": "somewhere", "kind": "entire_place",
	}

	// Unknown category pk
	payload := map[string]any{}
	for k, v := range base {
		payload[k] = v
	}
	payload["category"] = 9999
	resp := f.post("/api/v1/rooms", payload, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "category not found", body["error"])

	// Invalid kind fails binding
	payload["category"] = 1
	payload["kind"] = "castle"
	resp = f.post("/api/v1/rooms", payload, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestTrailingSlashSpellingReachesHandlers covers clients that spell
// the collection paths Django-style ("rooms/"): gin redirects them onto
// the registered routes, preserving the method for writes (307)
func TestTrailingSlashSpellingReachesHandlers(t *testing.T) {
	f := newAPIFixture(t)
	f.warmUp()

	resp := f.get("/api/v1/rooms/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// An anonymous POST must land on the handler's auth check, not on
	// a 404 or a method downgrade
	resp = f.post("/api/v1/rooms/", map[string]any{"name": "Loft"}, true)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetRoom_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.get("/api/v1/rooms/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "room not found", body["error"])
}
