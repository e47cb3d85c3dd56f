package lib

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/app/depcreate"
	"github.com/taskline/taskline/internal/app/deplist"
	"github.com/taskline/taskline/internal/app/taskcreate"
	"github.com/taskline/taskline/internal/app/tasklist"
	"github.com/taskline/taskline/internal/app/important"
	"github.com/taskline/taskline/internal/app/workload"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/model"
)

// ListTasks returns every task, in backend order.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Backend: c.backend,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, tasklist.Request{All: true})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(res.Tasks), nil
}

// ListDependencies returns the dependencies of a task on either side, or every
// dependency when taskID is empty.
func (c *Client) ListDependencies(ctx context.Context, taskID string) ([]Dependency, error) {
	svc, err := deplist.NewService(deplist.ServiceConfig{
		Backend: c.backend,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	deps, err := svc.Run(ctx, deplist.Request{TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalDependencyList(deps), nil
}

// CreateTask creates a task.
//
// Returns [ErrPermission] for a read only session, [ErrNotValid] without
// title, [ErrInvalidRange] when the end date precedes the start date, or
// [ErrBackend] when the backend rejects it.
func (c *Client) CreateTask(ctx context.Context, opts CreateTaskOpts) (*Task, error) {
	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Backend: c.backend,
		Session: c.session,
		Now:     c.now,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskcreate.Request{Task: edit.TaskDraft{
		Title:       opts.Title,
		Description: opts.Description,
		StartDate:   opts.StartDate,
		EndDate:     opts.EndDate,
		DueDate:     opts.DueDate,
		Status:      model.TaskStatus(opts.Status),
		AssigneeID:  opts.AssigneeID,
		Priority:    opts.Priority,
		ParentID:    opts.ParentID,
	}})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalTask(*t)
	return &out, nil
}

// CreateDependency makes a task depend on another one.
//
// Returns [ErrPermission] for a read only session, [ErrSelfDependency] when
// both tasks are the same, or [ErrBackend] when the backend rejects it.
func (c *Client) CreateDependency(ctx context.Context, opts CreateDependencyOpts) (*Dependency, error) {
	svc, err := depcreate.NewService(depcreate.ServiceConfig{
		Backend: c.backend,
		Session: c.session,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	d, err := svc.Run(ctx, depcreate.Request{Dependency: edit.DependencyDraft{
		PredecessorID: opts.PredecessorID,
		SuccessorID:   opts.SuccessorID,
		Type:          model.DependencyType(opts.Type),
		LagDays:       opts.LagDays,
	}})
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalDependency(*d)
	return &out, nil
}

// Workload returns the task load of every active employee and of any other
// assignee, busiest first.
func (c *Client) Workload(ctx context.Context, opts *WorkloadOpts) ([]Workload, error) {
	svc, err := workload.NewService(workload.ServiceConfig{
		Backend: c.backend,
		Now:     c.now,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	var req workload.Request
	if opts != nil {
		req.OnlyLoaded = opts.OnlyLoaded
	}

	rows, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalWorkload(rows), nil
}

// EmployeeWorkload returns the workload of one employee, active or not, with
// its tasks. It returns [ErrNotFound] for an unknown employee.
func (c *Client) EmployeeWorkload(ctx context.Context, employeeID string) (*WorkloadDetail, error) {
	svc, err := workload.NewService(workload.ServiceConfig{
		Backend: c.backend,
		Now:     c.now,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	d, err := svc.Detail(ctx, employeeID)
	if err != nil {
		return nil, mapError(err)
	}

	out := fromInternalWorkloadDetail(*d)
	return &out, nil
}

// Important returns the new tasks blocking subtasks in progress, most urgent
// first, each with the employees recommended to take it.
func (c *Client) Important(ctx context.Context) ([]ImportantTask, error) {
	svc, err := important.NewService(important.ServiceConfig{
		Backend: c.backend,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	items, err := svc.Run(ctx, important.Request{})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalImportant(items), nil
}
