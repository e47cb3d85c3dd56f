// Package edit gates and executes task mutations for a session and reconciles the
// locally cached task collection with the backend responses.
package edit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// State is the edit state of a task.
type State int

const (
	// StateViewing is the read only state, every task starts here.
	StateViewing State = iota
	// StateEditing holds a draft of the task editable fields.
	StateEditing
	// StateSaving is a draft submitted to the backend and not resolved yet.
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	}
	return "unknown"
}

// Draft is the unsaved copy of a task editable fields.
type Draft struct {
	StartDate *model.Date
	EndDate   *model.Date
	Status    model.TaskStatus
}

func (d Draft) equal(o Draft) bool {
	return d.Status == o.Status && sameDate(d.StartDate, o.StartDate) && sameDate(d.EndDate, o.EndDate)
}

// DraftFields are user inputs for a draft, nil fields are left untouched.
// Empty date strings clear the date.
type DraftFields struct {
	StartDate *string
	EndDate   *string
	Status    *model.TaskStatus
}

// SaveResult is the resolution of a save.
type SaveResult struct {
	Task model.Task
	// Applied is false when the resolution was discarded because a newer action
	// on the same task superseded it or the controller was closed.
	Applied bool
}

// ControllerConfig is the configuration of the Controller.
type ControllerConfig struct {
	Backend backend.Backend
	Session model.Session
	// Tasks and Dependencies seed the cached collection, use Refresh to load it from the backend.
	Tasks        []model.Task
	Dependencies []model.Dependency
	// Now is the clock used to derive due dates, time.Now by default.
	Now    func() time.Time
	Logger log.Logger
}

func (c *ControllerConfig) defaults() error {
	if c.Backend == nil {
		return fmt.Errorf("backend is required")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "edit.Controller", "user": c.Session.User.Username})
	return nil
}

// Controller is the role gated edit controller of a session. At most one task
// is edited at a time. It is safe for concurrent use, the lock is never held
// during backend calls.
type Controller struct {
	backend backend.Backend
	canEdit bool
	now     func() time.Time
	logger  log.Logger

	mu           sync.Mutex
	tasks        []model.Task
	dependencies []model.Dependency
	editing      string
	state        State
	draft        Draft
	tokens       map[string]uint64
	refreshGen   uint64
	closed       bool
}

// NewController returns a new controller for the session.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		backend:      cfg.Backend,
		canEdit:      cfg.Session.CanEdit,
		now:          cfg.Now,
		logger:       cfg.Logger,
		tasks:        append([]model.Task(nil), cfg.Tasks...),
		dependencies: append([]model.Dependency(nil), cfg.Dependencies...),
		tokens:       map[string]uint64{},
	}, nil
}

// CanEdit reports whether the session can mutate.
func (c *Controller) CanEdit() bool { return c.canEdit }

// Tasks returns a copy of the cached task collection.
func (c *Controller) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Task(nil), c.tasks...)
}

// Dependencies returns a copy of the cached dependency collection.
func (c *Controller) Dependencies() []model.Dependency {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Dependency(nil), c.dependencies...)
}

// Task returns the canonical copy of a task.
func (c *Controller) Task(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return c.tasks[i], true
}

// State returns the edit state of a task.
func (c *Controller) State(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" || id != c.editing {
		return StateViewing
	}
	return c.state
}

// Draft returns the task being edited and its draft, false when nothing is edited.
func (c *Controller) Draft() (taskID string, draft Draft, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == "" {
		return "", Draft{}, false
	}
	return c.editing, c.draft, true
}

// Close discards every pending resolution, used when the view goes away.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.editing = ""
	c.state = StateViewing
	c.draft = Draft{}
}

// StartEdit enters the editing state on a task. An edit session on another
// task is discarded first.
func (c *Controller) StartEdit(id string) error {
	if err := c.gate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.open(); err != nil {
		return err
	}

	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("task %q: %w", id, model.ErrNotFound)
	}
	if c.editing == id && c.state == StateEditing {
		return nil
	}

	if c.editing != "" {
		c.logger.Debugf("Discarding draft of task %s", c.editing)
		c.tokens[c.editing]++
	}

	t := c.tasks[i]
	c.editing = id
	c.state = StateEditing
	c.draft = Draft{
		StartDate: copyDate(t.StartDate),
		EndDate:   copyDate(t.EndDate),
		Status:    t.Status,
	}
	return nil
}

// UpdateDraft applies user inputs on the draft. Invalid inputs leave the draft untouched.
func (c *Controller) UpdateDraft(fields DraftFields) error {
	if err := c.gate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.open(); err != nil {
		return err
	}
	if c.editing == "" {
		return fmt.Errorf("no task is being edited: %w", model.ErrNotValid)
	}

	draft := c.draft
	if fields.StartDate != nil {
		d, err := parseInputDate(*fields.StartDate)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		draft.StartDate = d
	}
	if fields.EndDate != nil {
		d, err := parseInputDate(*fields.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		draft.EndDate = d
	}
	if fields.Status != nil {
		if !fields.Status.Valid() {
			return fmt.Errorf("unknown status %q: %w", *fields.Status, model.ErrNotValid)
		}
		draft.Status = *fields.Status
	}

	c.draft = draft
	return nil
}

// Cancel discards the draft and returns to viewing. A save in flight is
// discarded on resolution.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == "" {
		return
	}
	c.tokens[c.editing]++
	c.editing = ""
	c.state = StateViewing
	c.draft = Draft{}
}

// Save submits the draft. An invalid range fails locally and keeps the session
// editing. A backend failure returns to editing with the draft intact. Only the
// latest save of a task is applied, older resolutions come back with Applied false.
func (c *Controller) Save(ctx context.Context) (SaveResult, error) {
	if err := c.gate(); err != nil {
		return SaveResult{}, err
	}

	c.mu.Lock()
	if err := c.open(); err != nil {
		c.mu.Unlock()
		return SaveResult{}, err
	}
	if c.editing == "" {
		c.mu.Unlock()
		return SaveResult{}, fmt.Errorf("no task is being edited: %w", model.ErrNotValid)
	}
	if err := model.ValidateRange(c.draft.StartDate, c.draft.EndDate); err != nil {
		c.mu.Unlock()
		return SaveResult{}, err
	}

	id := c.editing
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return SaveResult{}, fmt.Errorf("task %q: %w", id, model.ErrNotFound)
	}
	canonical := c.tasks[i]
	submitted := c.draft
	patch := draftPatch(canonical, submitted)
	c.tokens[id]++
	token := c.tokens[id]
	c.state = StateSaving
	c.mu.Unlock()

	logger := c.logger.WithValues(log.Kv{"task-id": id, "token": token})

	if patch.Empty() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.tokens[id] != token {
			return SaveResult{}, nil
		}
		c.resolveSession(id, submitted)
		return SaveResult{Task: canonical, Applied: true}, nil
	}

	updated, err := c.backend.UpdateTask(ctx, id, patch)

	c.mu.Lock()
	if c.closed || c.tokens[id] != token {
		c.mu.Unlock()
		logger.Debugf("Discarding stale save resolution")
		return SaveResult{}, nil
	}
	if err != nil {
		if c.editing == id {
			c.state = StateEditing
		}
		c.mu.Unlock()
		logger.Warningf("Save failed: %s", err)
		return SaveResult{}, asBackendError(err)
	}

	c.replace(*updated)
	c.resolveSession(id, submitted)
	c.mu.Unlock()

	logger.Infof("Task saved")
	c.refreshAfterMutation(ctx)
	return SaveResult{Task: *updated, Applied: true}, nil
}

// ChangeStatus sets the status of a task.
func (c *Controller) ChangeStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", status, model.ErrNotValid)
	}

	updated, err := c.backend.UpdateTask(ctx, id, backend.TaskPatch{Status: &status})
	if err != nil {
		return nil, asBackendError(err)
	}

	c.mu.Lock()
	if !c.closed {
		c.replace(*updated)
	}
	c.mu.Unlock()

	c.refreshAfterMutation(ctx)
	return updated, nil
}

// DeleteTask deletes a task, an edit session on it is discarded.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	if err := c.gate(); err != nil {
		return err
	}
	if err := c.ensureOpen(); err != nil {
		return err
	}

	if err := c.backend.DeleteTask(ctx, id); err != nil {
		return asBackendError(err)
	}

	c.mu.Lock()
	if !c.closed {
		if c.editing == id {
			c.tokens[id]++
			c.editing = ""
			c.state = StateViewing
			c.draft = Draft{}
		}
		if i := c.indexOf(id); i >= 0 {
			c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
		}
	}
	c.mu.Unlock()

	c.refreshAfterMutation(ctx)
	return nil
}

// TaskDraft is the input of a task creation.
type TaskDraft struct {
	Title       string
	Description string
	StartDate   *model.Date
	EndDate     *model.Date
	// DueDate is derived from the other dates when missing.
	DueDate    *model.Date
	Status     model.TaskStatus
	AssigneeID string
	Priority   *int
	ParentID   string
}

// CreateTask creates a task.
func (c *Controller) CreateTask(ctx context.Context, draft TaskDraft) (*model.Task, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", model.ErrNotValid)
	}
	if draft.Status != "" && !draft.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", draft.Status, model.ErrNotValid)
	}
	if err := model.ValidateRange(draft.StartDate, draft.EndDate); err != nil {
		return nil, err
	}

	created, err := c.backend.CreateTask(ctx, backend.TaskCreate{
		Title:       title,
		Description: draft.Description,
		DueDate:     DeriveDueDate(draft.DueDate, draft.StartDate, draft.EndDate, model.DateOf(c.now())),
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		Status:      draft.Status,
		AssigneeID:  draft.AssigneeID,
		Priority:    draft.Priority,
		ParentID:    draft.ParentID,
	})
	if err != nil {
		return nil, asBackendError(err)
	}

	c.mu.Lock()
	if !c.closed {
		c.tasks = append(c.tasks, *created)
	}
	c.mu.Unlock()

	c.refreshAfterMutation(ctx)
	return created, nil
}

// DependencyDraft is the input of a dependency creation.
type DependencyDraft struct {
	PredecessorID string
	SuccessorID   string
	// Type defaults to finish to start.
	Type model.DependencyType
	// LagDays is clamped to 0 when negative.
	LagDays int
}

// CreateDependency creates a dependency between two tasks.
func (c *Controller) CreateDependency(ctx context.Context, draft DependencyDraft) (*model.Dependency, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	req, err := dependencyCreate(draft)
	if err != nil {
		return nil, err
	}

	created, err := c.backend.CreateDependency(ctx, req)
	if err != nil {
		return nil, asBackendError(err)
	}

	c.mu.Lock()
	if !c.closed {
		c.dependencies = append(c.dependencies, *created)
	}
	c.mu.Unlock()

	c.refreshAfterMutation(ctx)
	return created, nil
}

// UpdateDependency replaces a dependency, with the same validation as the creation.
func (c *Controller) UpdateDependency(ctx context.Context, id string, draft DependencyDraft) (*model.Dependency, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	req, err := dependencyCreate(draft)
	if err != nil {
		return nil, err
	}

	updated, err := c.backend.UpdateDependency(ctx, id, req)
	if err != nil {
		return nil, asBackendError(err)
	}

	c.refreshAfterMutation(ctx)
	return updated, nil
}

// DeleteDependency deletes a dependency.
func (c *Controller) DeleteDependency(ctx context.Context, id string) error {
	if err := c.gate(); err != nil {
		return err
	}
	if err := c.ensureOpen(); err != nil {
		return err
	}

	if err := c.backend.DeleteDependency(ctx, id); err != nil {
		return asBackendError(err)
	}

	c.mu.Lock()
	if !c.closed {
		for i, d := range c.dependencies {
			if d.ID == id {
				c.dependencies = append(c.dependencies[:i:i], c.dependencies[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	c.refreshAfterMutation(ctx)
	return nil
}

// Refresh replaces the cached collection with the backend one. A refresh
// superseded by a newer one is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if err := c.open(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.refreshGen++
	gen := c.refreshGen
	c.mu.Unlock()

	tasks, err := backend.ListAllTasks(ctx, c.backend, backend.TaskFilter{})
	if err != nil {
		return fmt.Errorf("could not refresh tasks: %w", asBackendError(err))
	}
	deps, err := c.backend.ListDependencies(ctx, backend.DependencyFilter{})
	if err != nil {
		return fmt.Errorf("could not refresh dependencies: %w", asBackendError(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.refreshGen {
		return nil
	}
	c.tasks = tasks
	c.dependencies = deps
	return nil
}

// refreshAfterMutation refreshes the collection after a successful mutation.
// The mutation already succeeded so a failure is only logged.
func (c *Controller) refreshAfterMutation(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warningf("Could not refresh tasks after mutation: %s", err)
	}
}

// resolveSession leaves the edit session of a saved task. A draft changed while
// saving stays in editing.
func (c *Controller) resolveSession(id string, submitted Draft) {
	if c.editing != id {
		return
	}
	if !c.draft.equal(submitted) {
		c.state = StateEditing
		return
	}
	c.editing = ""
	c.state = StateViewing
	c.draft = Draft{}
}

func (c *Controller) gate() error {
	if !c.canEdit {
		return fmt.Errorf("session cannot edit: %w", model.ErrPermission)
	}
	return nil
}

// open must be called with the lock held.
func (c *Controller) open() error {
	if c.closed {
		return fmt.Errorf("controller is closed: %w", model.ErrNotValid)
	}
	return nil
}

func (c *Controller) ensureOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open()
}

func (c *Controller) indexOf(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) replace(t model.Task) {
	if i := c.indexOf(t.ID); i >= 0 {
		c.tasks[i] = t
		return
	}
	c.tasks = append(c.tasks, t)
}

// DeriveDueDate resolves the due date of a new task: the explicit one, else the
// end date, else start date plus 7 days, else today plus 7 days.
func DeriveDueDate(due, start, end *model.Date, today model.Date) model.Date {
	switch {
	case due != nil && !due.IsZero():
		return *due
	case end != nil && !end.IsZero():
		return *end
	case start != nil && !start.IsZero():
		return start.AddDays(7)
	}
	return today.AddDays(7)
}

// ParseLag coerces a user lag input, invalid and negative values are 0.
func ParseLag(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func dependencyCreate(draft DependencyDraft) (backend.DependencyCreate, error) {
	typ := draft.Type
	if typ == "" {
		typ = model.DependencyFinishToStart
	}
	lag := max(draft.LagDays, 0)

	dep := model.Dependency{
		PredecessorID: strings.TrimSpace(draft.PredecessorID),
		SuccessorID:   strings.TrimSpace(draft.SuccessorID),
		Type:          typ,
		LagDays:       lag,
	}
	if err := dep.Validate(); err != nil {
		return backend.DependencyCreate{}, err
	}

	return backend.DependencyCreate{
		PredecessorID: dep.PredecessorID,
		SuccessorID:   dep.SuccessorID,
		Type:          dep.Type,
		LagDays:       dep.LagDays,
	}, nil
}

// draftPatch returns the changes of a draft over the canonical task. Cleared
// dates are explicit.
func draftPatch(t model.Task, d Draft) backend.TaskPatch {
	var p backend.TaskPatch
	if !sameDate(t.StartDate, d.StartDate) {
		p.StartDate = backend.SetDate(copyDate(d.StartDate))
	}
	if !sameDate(t.EndDate, d.EndDate) {
		p.EndDate = backend.SetDate(copyDate(d.EndDate))
	}
	if t.Status != d.Status {
		status := d.Status
		p.Status = &status
	}
	return p
}

func parseInputDate(s string) (*model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func asBackendError(err error) error {
	var berr *model.BackendError
	if errors.As(err, &berr) {
		return err
	}
	return &model.BackendError{Message: err.Error(), Err: err}
}

func sameDate(a, b *model.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func copyDate(d *model.Date) *model.Date {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
