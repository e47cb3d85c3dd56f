package login

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// Authenticator exchanges a username and password for credentials.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Credentials, error)
}

// SessionSaver persists a login.
type SessionSaver interface {
	Save(sess auth.StoredSession) error
}

// ServiceConfig is the configuration for the login service.
type ServiceConfig struct {
	Authenticator Authenticator
	Store         SessionSaver
	// APIURL is stored with the session so later commands target the same backend.
	APIURL string
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Authenticator == nil {
		return fmt.Errorf("authenticator is required")
	}

	if c.Store == nil {
		return fmt.Errorf("session store is required")
	}

	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Login"})

	return nil
}

// Service logs in and persists the session.
type Service struct {
	authn  Authenticator
	store  SessionSaver
	apiURL string
	logger log.Logger
}

// NewService creates a new login service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		authn:  cfg.Authenticator,
		store:  cfg.Store,
		apiURL: cfg.APIURL,
		logger: cfg.Logger,
	}, nil
}

// Request represents the login request parameters.
type Request struct {
	Username string
	Password string
}

// Run logs in and returns the session context of the user.
func (s *Service) Run(ctx context.Context, req Request) (*model.Session, error) {
	creds, err := s.authn.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(auth.StoredSession{APIURL: s.apiURL, Credentials: *creds}); err != nil {
		return nil, fmt.Errorf("could not persist session: %w", err)
	}

	session := auth.NewSession(creds.User)
	s.logger.Infof("Logged in as %s (%s)", session.User.Username, session.Role)
	return &session, nil
}
