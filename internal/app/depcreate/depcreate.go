package depcreate

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the dependency create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.DependencyCreate"})

	return nil
}

// Service creates or replaces dependencies between tasks.
type Service struct {
	backend backend.Backend
	session model.Session
	logger  log.Logger
}

// NewService creates a new dependency create service.
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

// Request represents the dependency create request parameters.
type Request struct {
	// ID replaces an existing dependency when set.
	ID         string
	Dependency edit.DependencyDraft
}

// Run creates the dependency, or replaces it when the request has an ID.
func (s *Service) Run(ctx context.Context, req Request) (*model.Dependency, error) {
	ctrl, err := edit.NewController(edit.ControllerConfig{
		Backend: s.backend,
		Session: s.session,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create edit controller: %w", err)
	}
	defer ctrl.Close()

	if req.ID != "" {
		dep, err := ctrl.UpdateDependency(ctx, req.ID, req.Dependency)
		if err != nil {
			return nil, err
		}
		s.logger.Infof("Dependency %s updated", dep.ID)
		return dep, nil
	}

	dep, err := ctrl.CreateDependency(ctx, req.Dependency)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Dependency %s created", dep.ID)
	return dep, nil
}
