package lib

import (
	"context"
	"fmt"

	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/model"
)

// EditSession edits the tasks of the timeline.
//
// It keeps a local copy of the tasks and dependencies that is replaced as a
// whole after every successful mutation. At most one task is edited at a time:
//
//	s, _ := client.NewEditSession(ctx)
//	defer s.Close()
//
//	_ = s.StartEdit("t1")
//	end := "2024-04-30"
//	_ = s.UpdateDraft(lib.DraftChanges{EndDate: &end})
//	res, err := s.Save(ctx)
//
// Every mutation fails with [ErrPermission] for a session without edit
// capability, before any backend call. An EditSession is safe for
// concurrent use.
type EditSession struct {
	ctrl *edit.Controller
}

// NewEditSession loads the tasks and dependencies and returns a session on them.
func (c *Client) NewEditSession(ctx context.Context) (*EditSession, error) {
	ctrl, err := edit.NewController(edit.ControllerConfig{
		Backend: c.backend,
		Session: c.session,
		Now:     c.now,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create edit controller: %w", err)
	}

	if err := ctrl.Refresh(ctx); err != nil {
		return nil, mapError(err)
	}

	return &EditSession{ctrl: ctrl}, nil
}

// CanEdit reports whether the session can mutate.
func (s *EditSession) CanEdit() bool { return s.ctrl.CanEdit() }

// Tasks returns the local copy of the tasks.
func (s *EditSession) Tasks() []Task { return fromInternalTaskList(s.ctrl.Tasks()) }

// Dependencies returns the local copy of the dependencies.
func (s *EditSession) Dependencies() []Dependency {
	return fromInternalDependencyList(s.ctrl.Dependencies())
}

// Task returns the canonical version of a task, never the draft.
func (s *EditSession) Task(id string) (Task, bool) {
	t, ok := s.ctrl.Task(id)
	return fromInternalTask(t), ok
}

// State returns the edit state of a task.
func (s *EditSession) State(id string) EditState { return fromInternalState(s.ctrl.State(id)) }

// Draft returns the task being edited and its draft.
func (s *EditSession) Draft() (taskID string, draft Draft, ok bool) {
	id, d, ok := s.ctrl.Draft()
	return id, fromInternalDraft(d), ok
}

// StartEdit starts editing a task, discarding the draft of any other one.
func (s *EditSession) StartEdit(taskID string) error {
	return mapError(s.ctrl.StartEdit(taskID))
}

// UpdateDraft changes the draft. An unparsable date fails with [ErrNotValid]
// and leaves the draft untouched.
func (s *EditSession) UpdateDraft(changes DraftChanges) error {
	return mapError(s.ctrl.UpdateDraft(toInternalDraftFields(changes)))
}

// Cancel discards the draft, a pending save resolution is discarded too.
func (s *EditSession) Cancel() { s.ctrl.Cancel() }

// Save submits the draft. An end date before the start date fails with
// [ErrInvalidRange] without calling the backend. On failure the task goes
// back to editing with the draft intact, on success the local copy is refreshed.
func (s *EditSession) Save(ctx context.Context) (SaveResult, error) {
	res, err := s.ctrl.Save(ctx)
	if err != nil {
		return SaveResult{}, mapError(err)
	}
	return SaveResult{Task: fromInternalTask(res.Task), Applied: res.Applied}, nil
}

// ChangeStatus sets the status of a task without an edit session.
func (s *EditSession) ChangeStatus(ctx context.Context, taskID string, status TaskStatus) (*Task, error) {
	t, err := s.ctrl.ChangeStatus(ctx, taskID, model.TaskStatus(status))
	if err != nil {
		return nil, mapError(err)
	}
	out := fromInternalTask(*t)
	return &out, nil
}

// DeleteTask deletes a task.
func (s *EditSession) DeleteTask(ctx context.Context, taskID string) error {
	return mapError(s.ctrl.DeleteTask(ctx, taskID))
}

// DeleteDependency deletes a dependency.
func (s *EditSession) DeleteDependency(ctx context.Context, id string) error {
	return mapError(s.ctrl.DeleteDependency(ctx, id))
}

// Refresh reloads the local copy from the backend.
func (s *EditSession) Refresh(ctx context.Context) error {
	return mapError(s.ctrl.Refresh(ctx))
}

// Close ends the session, pending resolutions are discarded and every later
// call fails.
func (s *EditSession) Close() { s.ctrl.Close() }
