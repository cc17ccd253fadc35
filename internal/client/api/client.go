// Package api implements the HTTP client for the authd server API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prestobr/authd/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrBadRequest   = errors.New("bad request")
)

// Client talks to the server's REST API. After a successful Login the
// bearer token is kept in memory and attached to subsequent requests.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// User mirrors the server's user representation.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
}

// ApiKey mirrors the server's key representation. Key is populated only in
// the creation response.
type ApiKey struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Owner       string     `json:"owner"`
	Roles       []string   `json:"roles"`
	Key         string     `json:"key,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrConflict
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	default:
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if body.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, body.Error)
	}
	return sentinel
}

// Register creates an account. Password bytes are not retained.
func (c *Client) Register(ctx context.Context, username, email string, password []byte, roles []string) (*User, error) {
	req := struct {
		Username string   `json:"username"`
		Email    string   `json:"email"`
		Password string   `json:"password"`
		Roles    []string `json:"roles,omitempty"`
	}{Username: username, Email: email, Password: string(password), Roles: roles}

	var user User
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the returned bearer token for the session.
func (c *Client) Login(ctx context.Context, username string, password []byte) error {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: string(password)}

	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", req, &resp); err != nil {
		return err
	}

	c.token = resp.Token
	return nil
}

// Logout drops the session token.
func (c *Client) Logout() {
	c.token = ""
}

// LoggedIn reports whether a session token is held.
func (c *Client) LoggedIn() bool {
	return c.token != ""
}

// CreateKey mints a new API key. The returned record carries the raw secret
// in Key; the server never reveals it again.
func (c *Client) CreateKey(ctx context.Context, description string, roles []string, expiresAt *time.Time) (*ApiKey, error) {
	req := struct {
		Description string     `json:"description"`
		Roles       []string   `json:"roles,omitempty"`
		ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	}{Description: description, Roles: roles, ExpiresAt: expiresAt}

	var key ApiKey
	if err := c.do(ctx, http.MethodPost, "/v1/api-keys", req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// ListKeys returns the caller's keys.
func (c *Client) ListKeys(ctx context.Context) ([]ApiKey, error) {
	var keys []ApiKey
	if err := c.do(ctx, http.MethodGet, "/v1/api-keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// RevokeKey deactivates one of the caller's keys.
func (c *Client) RevokeKey(ctx context.Context, keyID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/api-keys/%d", keyID), nil, nil)
}
