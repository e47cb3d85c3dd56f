package taskedit

import (
	"context"
	"fmt"
	"time"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the task edit service.
type ServiceConfig struct {
	Backend backend.Backend
	Session model.Session
	Now     func() time.Time
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskEdit"})

	return nil
}

// Service edits the dates and status of a task through an edit session.
type Service struct {
	backend backend.Backend
	session model.Session
	now     func() time.Time
	logger  log.Logger
}

// NewService creates a new task edit service.
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

// Request represents the task edit request parameters. Nil fields are kept,
// empty dates clear the field.
type Request struct {
	TaskID    string
	StartDate *string
	EndDate   *string
	Status    *model.TaskStatus
}

// Run applies the changes and returns the saved task.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.TaskID == "" {
		return nil, fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}
	if req.StartDate == nil && req.EndDate == nil && req.Status == nil {
		return nil, fmt.Errorf("nothing to change: %w", model.ErrNotValid)
	}

	// A status alone is a quick change, no edit session needed.
	if req.StartDate == nil && req.EndDate == nil {
		ctrl, err := s.controller(nil)
		if err != nil {
			return nil, err
		}
		defer ctrl.Close()
		return ctrl.ChangeStatus(ctx, req.TaskID, *req.Status)
	}

	// Checked before fetching, a read only session never reaches the backend.
	if !s.session.CanEdit {
		return nil, fmt.Errorf("edit task %s: %w", req.TaskID, model.ErrPermission)
	}

	task, err := s.backend.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	ctrl, err := s.controller([]model.Task{*task})
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	if err := ctrl.StartEdit(task.ID); err != nil {
		return nil, err
	}
	err = ctrl.UpdateDraft(edit.DraftFields{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
	})
	if err != nil {
		return nil, err
	}

	res, err := ctrl.Save(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Task %s edited", task.ID)
	return &res.Task, nil
}

func (s *Service) controller(tasks []model.Task) (*edit.Controller, error) {
	ctrl, err := edit.NewController(edit.ControllerConfig{
		Backend: s.backend,
		Session: s.session,
		Tasks:   tasks,
		Now:     s.now,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create edit controller: %w", err)
	}
	return ctrl, nil
}
