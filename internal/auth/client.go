// Package auth exchanges credentials for tokens against the backend and keeps
// the resulting session.
package auth

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

	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// Credentials are the tokens handed out by a login, with the identity they belong to.
type Credentials struct {
	Access  string
	Refresh string
	User    model.User
}

// ClientConfig is the configuration for the auth client.
type ClientConfig struct {
	// BaseURL is the API root, the same one the backend client uses.
	BaseURL    string
	HTTPClient *http.Client
	Logger     log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "auth.Client"})
	return nil
}

// Client talks to the token endpoints of the backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// NewClient creates a new auth client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

type userDTO struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Groups   []string        `json:"groups"`
}

type loginResponse struct {
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
	User    userDTO `json:"user"`
}

// Login exchanges a username and password for credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", model.ErrNotValid)
	}

	var resp loginResponse
	err := c.post(ctx, "/auth/login/", map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("could not login: %w", err)
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("could not login: %w", &model.BackendError{StatusCode: http.StatusUnauthorized, Message: "no access token returned"})
	}

	c.logger.Infof("Logged in as %s", resp.User.Username)

	return &Credentials{
		Access:  resp.Access,
		Refresh: resp.Refresh,
		User: model.User{
			ID:       strings.Trim(string(resp.User.ID), `"`),
			Username: resp.User.Username,
			Email:    resp.User.Email,
			Groups:   resp.User.Groups,
		},
	}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", fmt.Errorf("could not refresh token: %w", &model.BackendError{StatusCode: http.StatusUnauthorized, Message: "no refresh token"})
	}

	var resp struct {
		Access string `json:"access"`
	}
	if err := c.post(ctx, "/auth/refresh/", map[string]string{"refresh": refresh}, &resp); err != nil {
		return "", fmt.Errorf("could not refresh token: %w", err)
	}
	if resp.Access == "" {
		return "", fmt.Errorf("could not refresh token: %w", &model.BackendError{StatusCode: http.StatusUnauthorized, Message: "no access token returned"})
	}

	c.logger.Debugf("Access token refreshed")
	return resp.Access, nil
}

// Logout revokes the refresh token. The backend answers success even for
// unknown tokens.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	if err := c.post(ctx, "/auth/logout/", map[string]string{"refresh": refresh}, nil); err != nil {
		return fmt.Errorf("could not logout: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return &model.BackendError{Message: "could not encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return &model.BackendError{Message: "could not build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &model.BackendError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.BackendError{StatusCode: resp.StatusCode, Message: "could not read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(respBody, &e)
		msg := e.Error
		if msg == "" {
			msg = e.Detail
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &model.BackendError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &model.BackendError{StatusCode: resp.StatusCode, Message: "could not decode response", Err: err}
	}
	return nil
}
