package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	apiBasePath = "/api/v1/"

	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"
)

var validate = validator.New()

// Client is an HTTP client for the Roomly API. Authentication is
// cookie-based: the jar carries the session and CSRF cookies, and every
// mutating call echoes the CSRF cookie in the X-CSRFToken header.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new API client. The jar is required: without it the
// session cookie set by login would be dropped on the floor.
func New(baseURL string, jar http.CookieJar, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host are required", baseURL)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client. The client's jar becomes the
// cookie source for CSRF tokens.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the API base URL the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Me fetches the current user. An auth failure is returned as-is; the
// session store is the layer that maps it to "not logged in".
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LogIn posts username/password credentials. A wrong credential comes
// back as *DomainError, an unreachable backend as *TransportError.
func (c *Client) LogIn(ctx context.Context, username, password string) error {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	return c.post(ctx, "users/log-in", body, nil)
}

// SignUp validates the payload locally and creates an account. The
// pre-flight check never replaces server validation; it only avoids a
// round trip the server would reject.
func (c *Client) SignUp(ctx context.Context, payload SignUpPayload) error {
	if err := validateSignUp(payload); err != nil {
		return err
	}
	return c.post(ctx, "users/signup", payload, nil)
}

// LogOut posts an empty body with the anti-forgery header. Callers
// treat it as fire-and-forget and invalidate their cached session
// regardless of the outcome.
func (c *Client) LogOut(ctx context.Context) error {
	return c.post(ctx, "users/logout", nil, nil)
}

// ExchangeCode posts a provider-issued OAuth code to the backend and
// returns the raw response status. The only signal the caller needs is
// the status itself; a network failure returns 0 and a *TransportError.
func (c *Client) ExchangeCode(ctx context.Context, provider, code string) (int, error) {
	body := map[string]string{"code": code}

	resp, err := c.do(ctx, http.MethodPost, "users/"+provider, body)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// ListRooms returns all room summaries
func (c *Client) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	var rooms []RoomSummary
	if err := c.get(ctx, "rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetRoom returns the detail of one room
func (c *Client) GetRoom(ctx context.Context, pk string) (*Room, error) {
	if pk == "" {
		return nil, fmt.Errorf("room pk is required")
	}
	var room Room
	if err := c.get(ctx, "rooms/"+pk, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomReviews returns the reviews of one room
func (c *Client) GetRoomReviews(ctx context.Context, pk string) ([]Review, error) {
	if pk == "" {
		return nil, fmt.Errorf("room pk is required")
	}
	var reviews []Review
	if err := c.get(ctx, "rooms/"+pk+"/reviews", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Amenities returns the amenity lookup table
func (c *Client) Amenities(ctx context.Context) ([]Amenity, error) {
	var amenities []Amenity
	if err := c.get(ctx, "rooms/amenities", &amenities); err != nil {
		return nil, err
	}
	return amenities, nil
}

// Categories returns the room categories
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// UploadRoom creates a new listing owned by the authenticated user
func (c *Client) UploadRoom(ctx context.Context, payload UploadRoomPayload) (*Room, error) {
	var room Room
	if err := c.post(ctx, "rooms", payload, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// do builds and sends one request. Mutating requests read the CSRF
// token from the jar at call time; it can rotate, so it is never cached
// in memory. A missing token is sent as an empty string and left for
// the server to reject.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+apiBasePath+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := ulid.Make().String()
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(csrfHeaderName, c.csrfToken())
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("API response")

	return resp, nil
}

// csrfToken reads the csrftoken cookie fresh from the jar
func (c *Client) csrfToken() string {
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// decodeResponse maps a response onto the uniform result convention:
// an {"error": ...} payload on any status is a domain rejection, any
// other non-2xx is a transport failure.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return &DomainError{Message: envelope.Error}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}

// validateSignUp runs the pre-flight field checks and flattens the
// validator output into per-field messages.
func validateSignUp(payload SignUpPayload) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate signup payload: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "is required"
		case "email":
			fields[field] = "must be a valid email address"
		case "min":
			fields[field] = fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			fields[field] = "is invalid"
		}
	}

	return &ValidationError{Fields: fields}
}
