package logout

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// Revoker revokes a refresh token.
type Revoker interface {
	Logout(ctx context.Context, refresh string) error
}

// SessionStore loads and deletes the persisted login.
type SessionStore interface {
	Load() (*auth.StoredSession, error)
	Delete() error
}

// ServiceConfig is the configuration for the logout service.
type ServiceConfig struct {
	Revoker Revoker
	Store   SessionStore
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Revoker == nil {
		return fmt.Errorf("revoker is required")
	}

	if c.Store == nil {
		return fmt.Errorf("session store is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Logout"})

	return nil
}

// Service revokes the session and forgets it locally.
type Service struct {
	revoker Revoker
	store   SessionStore
	logger  log.Logger
}

// NewService creates a new logout service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		revoker: cfg.Revoker,
		store:   cfg.Store,
		logger:  cfg.Logger,
	}, nil
}

// Run logs out. It returns false when there was no session. The local session
// is deleted even when the backend could not revoke the token.
func (s *Service) Run(ctx context.Context) (bool, error) {
	sess, err := s.store.Load()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.revoker.Logout(ctx, sess.Credentials.Refresh); err != nil {
		s.logger.Warningf("Could not revoke refresh token: %s", err)
	}

	if err := s.store.Delete(); err != nil {
		return false, err
	}

	s.logger.Infof("Logged out %s", sess.Credentials.User.Username)
	return true, nil
}
