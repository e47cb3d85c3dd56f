package deplist

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the dependency list service.
type ServiceConfig struct {
	Backend backend.Backend
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.DependencyList"})

	return nil
}

// Service lists dependencies.
type Service struct {
	backend backend.Backend
	logger  log.Logger
}

// NewService creates a new dependency list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the dependency list request parameters.
type Request struct {
	PredecessorID string
	SuccessorID   string
	// TaskID lists the dependencies of a task on either side.
	TaskID string
}

// Run lists the dependencies.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Dependency, error) {
	if req.TaskID != "" && (req.PredecessorID != "" || req.SuccessorID != "") {
		return nil, fmt.Errorf("task filter can't be combined with predecessor or successor: %w", model.ErrNotValid)
	}

	if req.TaskID == "" {
		deps, err := s.backend.ListDependencies(ctx, backend.DependencyFilter{PredecessorID: req.PredecessorID, SuccessorID: req.SuccessorID})
		if err != nil {
			return nil, fmt.Errorf("could not list dependencies: %w", err)
		}
		s.logger.Debugf("Found %d dependencies", len(deps))
		return deps, nil
	}

	incoming, err := s.backend.ListDependencies(ctx, backend.DependencyFilter{SuccessorID: req.TaskID})
	if err != nil {
		return nil, fmt.Errorf("could not list incoming dependencies: %w", err)
	}
	outgoing, err := s.backend.ListDependencies(ctx, backend.DependencyFilter{PredecessorID: req.TaskID})
	if err != nil {
		return nil, fmt.Errorf("could not list outgoing dependencies: %w", err)
	}

	deps := append(incoming, outgoing...)
	s.logger.Debugf("Found %d dependencies of task %s", len(deps), req.TaskID)
	return deps, nil
}
