package taskremove

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the task remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskRemove"})

	return nil
}

// Service removes tasks.
type Service struct {
	backend backend.Backend
	session model.Session
	logger  log.Logger
}

// NewService creates a new task remove service.
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

// Request represents the task remove request parameters.
type Request struct {
	TaskID string
}

// Run removes the task.
func (s *Service) Run(ctx context.Context, req Request) error {
	if req.TaskID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
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

	if err := ctrl.DeleteTask(ctx, req.TaskID); err != nil {
		return err
	}

	s.logger.Infof("Task %s removed", req.TaskID)
	return nil
}
