package tasklist

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the task list service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskList"})

	return nil
}

// Service lists tasks with optional filtering.
type Service struct {
	backend backend.Backend
	logger  log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the task list request parameters.
type Request struct {
	Filter backend.TaskFilter
	// All walks every page ignoring the filter page.
	All bool
	// OverdueOf keeps only the tasks overdue on that date when set.
	OverdueOf *model.Date
}

// Response is a listing.
type Response struct {
	Tasks []model.Task
	// NextPage is 0 when there is nothing else to list.
	NextPage int
}

// Run lists the tasks.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	if req.Filter.Status != "" && !req.Filter.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", req.Filter.Status, model.ErrNotValid)
	}
	if req.Filter.Page < 0 {
		return nil, fmt.Errorf("page must not be negative: %w", model.ErrNotValid)
	}

	resp := &Response{}
	if req.All {
		tasks, err := backend.ListAllTasks(ctx, s.backend, req.Filter)
		if err != nil {
			return nil, fmt.Errorf("could not list tasks: %w", err)
		}
		resp.Tasks = tasks
	} else {
		page, err := s.backend.ListTasks(ctx, req.Filter)
		if err != nil {
			return nil, fmt.Errorf("could not list tasks: %w", err)
		}
		resp.Tasks = page.Tasks
		resp.NextPage = page.NextPage
	}

	if req.OverdueOf != nil {
		overdue := make([]model.Task, 0, len(resp.Tasks))
		for _, t := range resp.Tasks {
			if t.Overdue(*req.OverdueOf) {
				overdue = append(overdue, t)
			}
		}
		resp.Tasks = overdue
	}

	s.logger.Debugf("Found %d tasks", len(resp.Tasks))
	return resp, nil
}
