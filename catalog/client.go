package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the BookManager REST API. Every request carries the stored
// bearer token when one is present; failures surface as *HTTPError with the
// server-supplied message. There is no retry.
//
// An authentication rejection (401/403) from any endpoint clears the stored
// session before the error is returned, so stale tokens cannot linger.
type Client struct {
	http    *http.Client
	baseURL string
	session *SessionStore
	logger  *slog.Logger
}

// NewClient creates a client for the API at baseURL, reading and refreshing
// credentials through the given session store.
func NewClient(baseURL string, session *SessionStore, logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		logger:  logger,
	}
}

// doRequest executes one API call: encode the payload, attach the bearer
// token if a session exists, and decode failures into *HTTPError.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.session.Token(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	httpErr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(raw)}
	if IsAuthError(httpErr) {
		// The backend no longer honors the token; drop the session so the
		// caller lands back on the login flow.
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("clear rejected session", "error", err)
		}
	}
	return nil, httpErr
}

// errorMessage pulls the message out of the backend's {message} envelope,
// falling back to the raw body.
func errorMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return strings.TrimSpace(string(raw))
}

// Login exchanges credentials for a token and persists the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", creds)
	if err != nil {
		return User{}, err
	}
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return User{}, fmt.Errorf("decode login response: %w", err)
	}
	if err := c.session.SetSession(out.Token, out.User); err != nil {
		return User{}, fmt.Errorf("persist session: %w", err)
	}
	return out.User, nil
}

// Register creates an account. The backend does not log the new user in; the
// response carries no token and the session is left untouched.
func (c *Client) Register(ctx context.Context, reg Registration) (User, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", reg)
	if err != nil {
		return User{}, err
	}
	var out struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return User{}, fmt.Errorf("decode register response: %w", err)
	}
	return out.User, nil
}

// FetchProfile returns the authenticated user's profile.
func (c *Client) FetchProfile(ctx context.Context) (User, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return User{}, err
	}
	var out struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return User{}, fmt.Errorf("decode profile response: %w", err)
	}
	return out.Data, nil
}

// UpdateProfile applies the patch to the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (User, error) {
	raw, err := c.doRequest(ctx, http.MethodPut, "/api/users/profile", patch)
	if err != nil {
		return User{}, err
	}
	var out struct {
		Data User `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return User{}, fmt.Errorf("decode profile response: %w", err)
	}
	if out.Data == (User{}) {
		// Some deployments return the updated profile without the envelope.
		if err := json.Unmarshal(raw, &out.Data); err != nil {
			return User{}, fmt.Errorf("decode profile response: %w", err)
		}
	}
	return out.Data, nil
}

// ListMyBooks returns the caller's books. Ownership filtering happens on the
// backend; the client never filters by owner.
func (c *Client) ListMyBooks(ctx context.Context) ([]Book, error) {
	raw, err := c.doRequest(ctx, http.MethodGet, "/api/books/my-books", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Data    []Book `json:"data"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode books response: %w", err)
	}
	return out.Data, nil
}

// CreateBook adds a book owned by the authenticated user.
func (c *Client) CreateBook(ctx context.Context, draft Book) (Book, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/api/books/add-book", draft)
	if err != nil {
		return Book{}, err
	}
	return decodeBook(raw)
}

// UpdateBook replaces the editable fields of the book with the given id.
func (c *Client) UpdateBook(ctx context.Context, id string, patch Book) (Book, error) {
	raw, err := c.doRequest(ctx, http.MethodPut, "/api/books/"+id, patch)
	if err != nil {
		return Book{}, err
	}
	return decodeBook(raw)
}

// DeleteBook removes the book with the given id.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/books/"+id, nil)
	return err
}

func decodeBook(raw []byte) (Book, error) {
	// Single-book responses come either bare or wrapped in {data}.
	var wrapped struct {
		Data Book `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data.ID != "" {
		return wrapped.Data, nil
	}
	var book Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return Book{}, fmt.Errorf("decode book response: %w", err)
	}
	return book, nil
}
