package memory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

const defaultPageSize = 20

// BackendConfig is the configuration for the memory backend.
type BackendConfig struct {
	// Employees, Tasks and Dependencies seed the backend, IDs are generated when missing.
	Employees    []model.Employee
	Tasks        []model.Task
	Dependencies []model.Dependency
	PageSize     int
	Logger       log.Logger
}

func (c *BackendConfig) defaults() error {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "backend.Memory"})
	return nil
}

// Backend is an in-memory implementation of backend.Backend that enforces the
// same rules as the REST backend.
type Backend struct {
	employees map[string]model.Employee
	tasks     map[string]model.Task
	taskOrder []string
	deps      map[string]model.Dependency
	depOrder  []string
	pageSize  int
	mu        sync.RWMutex
	logger    log.Logger
}

// NewBackend creates a new memory backend.
func NewBackend(cfg BackendConfig) (*Backend, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	b := &Backend{
		employees: make(map[string]model.Employee),
		tasks:     make(map[string]model.Task),
		deps:      make(map[string]model.Dependency),
		pageSize:  cfg.PageSize,
		logger:    cfg.Logger,
	}

	for _, e := range cfg.Employees {
		if e.ID == "" {
			e.ID = newID()
		}
		b.employees[e.ID] = e
	}
	for _, t := range cfg.Tasks {
		if t.ID == "" {
			t.ID = newID()
		}
		if t.Status == "" {
			t.Status = model.TaskStatusNew
		}
		b.tasks[t.ID] = b.withAssignee(t)
		b.taskOrder = append(b.taskOrder, t.ID)
	}
	for _, d := range cfg.Dependencies {
		if d.ID == "" {
			d.ID = newID()
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("invalid seed dependency: %w", err)
		}
		b.deps[d.ID] = d
		b.depOrder = append(b.depOrder, d.ID)
	}

	return b, nil
}

func newID() string { return ulid.Make().String() }

func badRequest(format string, args ...any) error {
	return &model.BackendError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(kind, id string) error {
	return &model.BackendError{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// withAssignee resolves the assignee display name. Callers hold the lock.
func (b *Backend) withAssignee(t model.Task) model.Task {
	if e, ok := b.employees[t.AssigneeID]; ok {
		t.Assignee = e.FullName
	}
	return t
}

// ListTasks returns a page of tasks matching the filter, in creation order.
func (b *Backend) ListTasks(ctx context.Context, filter backend.TaskFilter) (*backend.TaskPage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []model.Task
	for _, id := range b.taskOrder {
		t := b.tasks[id]
		if matches(t, filter) {
			matched = append(matched, b.withAssignee(t))
		}
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * b.pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + b.pageSize
	next := page + 1
	if end >= len(matched) {
		end = len(matched)
		next = 0
	}

	return &backend.TaskPage{
		Tasks:    append([]model.Task(nil), matched[start:end]...),
		Total:    len(matched),
		NextPage: next,
	}, nil
}

func matches(t model.Task, f backend.TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.AssigneeID != "" && t.AssigneeID != f.AssigneeID {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
		return false
	}
	if f.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueAfter)) {
		return false
	}
	if f.RootOnly && t.ParentID != "" {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// GetTask returns a task by ID.
func (b *Backend) GetTask(ctx context.Context, id string) (*model.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tasks[id]
	if !ok {
		return nil, notFound("task", id)
	}
	t = b.withAssignee(t)
	return &t, nil
}

// CreateTask creates a task.
func (b *Backend) CreateTask(ctx context.Context, tc backend.TaskCreate) (*model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tc.DueDate.IsZero() {
		return nil, badRequest("due_date: this field is required")
	}
	if tc.Status == "" {
		tc.Status = model.TaskStatusNew
	}
	due := tc.DueDate
	t := model.Task{
		ID:          newID(),
		Title:       tc.Title,
		Description: tc.Description,
		StartDate:   tc.StartDate,
		EndDate:     tc.EndDate,
		DueDate:     &due,
		Status:      tc.Status,
		AssigneeID:  tc.AssigneeID,
		Priority:    tc.Priority,
		ParentID:    tc.ParentID,
	}
	if err := b.validateTask(t); err != nil {
		return nil, err
	}

	b.tasks[t.ID] = t
	b.taskOrder = append(b.taskOrder, t.ID)
	b.logger.Debugf("Created task in backend: %s", t.ID)

	t = b.withAssignee(t)
	return &t, nil
}

// validateTask applies the backend rules. Callers hold the lock.
func (b *Backend) validateTask(t model.Task) error {
	if err := t.Validate(); err != nil {
		return badRequest("%s", err)
	}
	if t.AssigneeID != "" {
		if _, ok := b.employees[t.AssigneeID]; !ok {
			return badRequest("assignee_id: employee %s does not exist", t.AssigneeID)
		}
	}
	if t.ParentID != "" {
		if t.ParentID == t.ID {
			return badRequest("parent: task cannot be its own parent")
		}
		seen := map[string]bool{}
		for cur := t.ParentID; cur != ""; cur = b.tasks[cur].ParentID {
			if cur == t.ID || seen[cur] {
				return badRequest("parent: hierarchy contains a cycle")
			}
			if _, ok := b.tasks[cur]; !ok {
				return badRequest("parent: task %s does not exist", cur)
			}
			seen[cur] = true
		}
	}
	if t.Status == model.TaskStatusDone {
		for _, other := range b.tasks {
			if other.ParentID == t.ID && other.Status == model.TaskStatusInProgress {
				return badRequest("status: cannot mark task as done while it has subtasks in progress")
			}
		}
	}
	return nil
}

// UpdateTask applies a partial update.
func (b *Backend) UpdateTask(ctx context.Context, id string, patch backend.TaskPatch) (*model.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.tasks[id]
	if !ok {
		return nil, notFound("task", id)
	}
	if patch.DueDate.Set && patch.DueDate.Value == nil {
		return nil, badRequest("due_date: this field may not be null")
	}

	updated := patch.Apply(current)
	if err := b.validateTask(updated); err != nil {
		return nil, err
	}

	b.tasks[id] = updated
	b.logger.Debugf("Updated task in backend: %s", id)

	updated = b.withAssignee(updated)
	return &updated, nil
}

// DeleteTask deletes a task, its dependencies go with it and its subtasks lose their parent.
func (b *Backend) DeleteTask(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tasks[id]; !ok {
		return notFound("task", id)
	}

	delete(b.tasks, id)
	b.taskOrder = remove(b.taskOrder, id)
	for tid, t := range b.tasks {
		if t.ParentID == id {
			t.ParentID = ""
			b.tasks[tid] = t
		}
	}
	for did, d := range b.deps {
		if d.PredecessorID == id || d.SuccessorID == id {
			delete(b.deps, did)
			b.depOrder = remove(b.depOrder, did)
		}
	}
	b.logger.Debugf("Deleted task from backend: %s", id)

	return nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ListDependencies returns the dependencies ordered by predecessor and successor title.
func (b *Backend) ListDependencies(ctx context.Context, filter backend.DependencyFilter) ([]model.Dependency, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	deps := []model.Dependency{}
	for _, id := range b.depOrder {
		d := b.deps[id]
		if filter.PredecessorID != "" && d.PredecessorID != filter.PredecessorID {
			continue
		}
		if filter.SuccessorID != "" && d.SuccessorID != filter.SuccessorID {
			continue
		}
		deps = append(deps, b.withTitles(d))
	}

	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].PredecessorTitle != deps[j].PredecessorTitle {
			return deps[i].PredecessorTitle < deps[j].PredecessorTitle
		}
		return deps[i].SuccessorTitle < deps[j].SuccessorTitle
	})

	return deps, nil
}

func (b *Backend) withTitles(d model.Dependency) model.Dependency {
	d.PredecessorTitle = b.tasks[d.PredecessorID].Title
	d.SuccessorTitle = b.tasks[d.SuccessorID].Title
	return d
}

// validateDependency applies the backend rules. Callers hold the lock.
func (b *Backend) validateDependency(id string, d model.Dependency) error {
	if err := d.Validate(); err != nil {
		return badRequest("%s", err)
	}
	for _, taskID := range []string{d.PredecessorID, d.SuccessorID} {
		if _, ok := b.tasks[taskID]; !ok {
			return badRequest("task %s does not exist", taskID)
		}
	}
	for otherID, other := range b.deps {
		if otherID != id && other.PredecessorID == d.PredecessorID && other.SuccessorID == d.SuccessorID {
			return badRequest("dependency between %s and %s already exists", d.PredecessorID, d.SuccessorID)
		}
	}
	return nil
}

// CreateDependency creates a dependency.
func (b *Backend) CreateDependency(ctx context.Context, dc backend.DependencyCreate) (*model.Dependency, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := model.Dependency{
		ID:            newID(),
		PredecessorID: dc.PredecessorID,
		SuccessorID:   dc.SuccessorID,
		Type:          dc.Type,
		LagDays:       dc.LagDays,
	}
	if d.Type == "" {
		d.Type = model.DependencyFinishToStart
	}
	if err := b.validateDependency(d.ID, d); err != nil {
		return nil, err
	}

	b.deps[d.ID] = d
	b.depOrder = append(b.depOrder, d.ID)
	b.logger.Debugf("Created dependency in backend: %s", d.ID)

	d = b.withTitles(d)
	return &d, nil
}

// UpdateDependency replaces a dependency.
func (b *Backend) UpdateDependency(ctx context.Context, id string, dc backend.DependencyCreate) (*model.Dependency, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.deps[id]; !ok {
		return nil, notFound("dependency", id)
	}

	d := model.Dependency{
		ID:            id,
		PredecessorID: dc.PredecessorID,
		SuccessorID:   dc.SuccessorID,
		Type:          dc.Type,
		LagDays:       dc.LagDays,
	}
	if err := b.validateDependency(id, d); err != nil {
		return nil, err
	}

	b.deps[id] = d
	d = b.withTitles(d)
	return &d, nil
}

// DeleteDependency deletes a dependency.
func (b *Backend) DeleteDependency(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.deps[id]; !ok {
		return notFound("dependency", id)
	}
	delete(b.deps, id)
	b.depOrder = remove(b.depOrder, id)
	b.logger.Debugf("Deleted dependency from backend: %s", id)

	return nil
}

// GanttData returns the dated tasks ordered by start date and the dependencies between them.
func (b *Backend) GanttData(ctx context.Context) (*model.GanttData, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data := &model.GanttData{}
	included := map[string]bool{}
	for _, id := range b.taskOrder {
		t := b.tasks[id]
		if !t.Dated() {
			continue
		}
		data.Tasks = append(data.Tasks, b.withAssignee(t))
		included[id] = true
	}
	sort.SliceStable(data.Tasks, func(i, j int) bool {
		return data.Tasks[i].StartDate.Before(*data.Tasks[j].StartDate)
	})

	for _, id := range b.depOrder {
		d := b.deps[id]
		if included[d.PredecessorID] {
			data.Dependencies = append(data.Dependencies, b.withTitles(d))
		}
	}

	return data, nil
}

// ListEmployees returns the active employees ordered by name.
func (b *Backend) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	employees := []model.Employee{}
	for _, e := range b.employees {
		if e.Active {
			employees = append(employees, e)
		}
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].FullName < employees[j].FullName })

	return employees, nil
}
