package taskcreate

import (
	"context"
	"fmt"
	"time"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the task create service.
type ServiceConfig struct {
	Backend backend.Backend
	Session model.Session
	// Now is the clock used to derive missing due dates.
	Now    func() time.Time
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskCreate"})

	return nil
}

// Service creates tasks.
type Service struct {
	backend backend.Backend
	session model.Session
	now     func() time.Time
	logger  log.Logger
}

// NewService creates a new task create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		session: cfg.Session,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the task create request parameters.
type Request struct {
	Task edit.TaskDraft
}

// Run creates the task and returns it as stored by the backend.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	ctrl, err := edit.NewController(edit.ControllerConfig{
		Backend: s.backend,
		Session: s.session,
		Now:     s.now,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create edit controller: %w", err)
	}
	defer ctrl.Close()

	created, err := ctrl.CreateTask(ctx, req.Task)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Task %s created", created.ID)
	return created, nil
}
