package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/taskline/taskline/internal/model"
)

// expiryDelta refreshes a bit before the real expiry so in flight requests don't race it.
const expiryDelta = 30 * time.Second

// Refresher gets a new access token from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refresh string) (string, error)
}

// TokenSourceConfig is the configuration of a TokenSource.
type TokenSourceConfig struct {
	Refresher Refresher
	Access    string
	Refresh   string
	// OnRefresh is called with every new access token, used to persist it.
	OnRefresh func(access string)
	// Now is the clock, time.Now by default.
	Now func() time.Time
}

func (c *TokenSourceConfig) defaults() error {
	if c.Refresher == nil {
		return fmt.Errorf("refresher is required")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.OnRefresh == nil {
		c.OnRefresh = func(string) {}
	}
	return nil
}

// TokenSource is an oauth2.TokenSource over the backend JWT access tokens. It
// refreshes through the backend when the access token expires.
type TokenSource struct {
	ctx       context.Context
	refresher Refresher
	refresh   string
	onRefresh func(string)
	now       func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenSource returns a new token source. ctx is used for the refresh calls.
func NewTokenSource(ctx context.Context, cfg TokenSourceConfig) (*TokenSource, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts := &TokenSource{
		ctx:       ctx,
		refresher: cfg.Refresher,
		refresh:   cfg.Refresh,
		onRefresh: cfg.OnRefresh,
		now:       cfg.Now,
	}
	if cfg.Access != "" {
		ts.token = accessToken(cfg.Access)
	}
	return ts, nil
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// Token returns a valid access token, refreshing it when needed. A failed
// refresh is a *model.BackendError with a 401 status.
func (t *TokenSource) Token() (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != nil && (t.token.Expiry.IsZero() || t.now().Add(expiryDelta).Before(t.token.Expiry)) {
		return t.token, nil
	}

	access, err := t.refresher.Refresh(t.ctx, t.refresh)
	if err != nil {
		return nil, &model.BackendError{StatusCode: http.StatusUnauthorized, Message: "session expired, login again", Err: err}
	}

	t.token = accessToken(access)
	t.onRefresh(access)
	return t.token, nil
}

// HTTPClient returns an HTTP client that authenticates every request with the source tokens.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}

func accessToken(access string) *oauth2.Token {
	return &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      TokenExpiry(access),
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying it. It returns the
// zero time when the token has no readable expiry.
func TokenExpiry(token string) time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(claims.Exp, 0)
}
