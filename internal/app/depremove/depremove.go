package depremove

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the dependency remove service.
type ServiceConfig struct {
	Backend backend.Backend
	Session model.Session
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.DependencyRemove"})

	return nil
}

// Service removes dependencies.
type Service struct {
	backend backend.Backend
	session model.Session
	logger  log.Logger
}

// NewService creates a new dependency remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		session: cfg.Session,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the dependency remove request parameters.
type Request struct {
	ID string
}

// Run removes the dependency.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.ID == "" {
		return fmt.Errorf("dependency id is required: %w", model.ErrNotValid)
	}

	ctrl, err := edit.NewController(edit.ControllerConfig{
		Backend: s.backend,
		Session: s.session,
		Logger:  s.logger,
	})
	if err != nil {
		return fmt.Errorf("could not create edit controller: %w", err)
	}
	defer ctrl.Close()

	if err := ctrl.DeleteDependency(ctx, req.ID); err != nil {
		return err
	}

	s.logger.Infof("Dependency %s removed", req.ID)
	return nil
}
