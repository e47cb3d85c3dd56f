// Package backend is the contract of the task-management REST backend.
package backend

import (
	"context"

	"github.com/taskline/taskline/internal/model"
)

// Backend is the task-management backend. Implementations return *model.BackendError
// when the backend rejected or failed a call.
type Backend interface {
	ListTasks(ctx context.Context, filter TaskFilter) (*TaskPage, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)
	CreateTask(ctx context.Context, t TaskCreate) (*model.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListDependencies(ctx context.Context, filter DependencyFilter) ([]model.Dependency, error)
	CreateDependency(ctx context.Context, d DependencyCreate) (*model.Dependency, error)
	UpdateDependency(ctx context.Context, id string, d DependencyCreate) (*model.Dependency, error)
	DeleteDependency(ctx context.Context, id string) error

	GanttData(ctx context.Context) (*model.GanttData, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// TaskFilter filters task listings. Zero values don't filter.
type TaskFilter struct {
	Status     model.TaskStatus
	AssigneeID string
	DueBefore  *model.Date
	DueAfter   *model.Date
	// RootOnly keeps only tasks without parent.
	RootOnly bool
	// Query is a free text search on the title.
	Query string
	// Page is the 1-based page, 0 means the first one.
	Page int
}

// TaskPage is a page of tasks.
type TaskPage struct {
	Tasks []model.Task
	Total int
	// NextPage is 0 on the last page.
	NextPage int
}

// TaskCreate is the payload to create a task. The backend requires the due date.
type TaskCreate struct {
	Title       string
	Description string
	DueDate     model.Date
	StartDate   *model.Date
	EndDate     *model.Date
	Status      model.TaskStatus
	AssigneeID  string
	Priority    *int
	ParentID    string
}

// DatePatch is a date field of a partial update. When Set is false the field is
// omitted, when Value is nil the field is explicitly cleared.
type DatePatch struct {
	Set   bool
	Value *model.Date
}

// SetDate returns a patch setting the date, a nil date clears it.
func SetDate(d *model.Date) DatePatch { return DatePatch{Set: true, Value: d} }

// TaskPatch is a partial task update.
type TaskPatch struct {
	Title     *string
	Status    *model.TaskStatus
	StartDate DatePatch
	EndDate   DatePatch
	DueDate   DatePatch
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Status == nil && !p.StartDate.Set && !p.EndDate.Set && !p.DueDate.Set
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t model.Task) model.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartDate.Set {
		t.StartDate = p.StartDate.Value
	}
	if p.EndDate.Set {
		t.EndDate = p.EndDate.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	return t
}

// DependencyFilter filters dependency listings.
type DependencyFilter struct {
	PredecessorID string
	SuccessorID   string
}

// DependencyCreate is the payload to create or replace a dependency.
type DependencyCreate struct {
	PredecessorID string
	SuccessorID   string
	Type          model.DependencyType
	LagDays       int
}

// ListAllTasks walks every page of a listing.
func ListAllTasks(ctx context.Context, b Backend, filter TaskFilter) ([]model.Task, error) {
	var all []model.Task
	filter.Page = 1
	for {
		page, err := b.ListTasks(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Tasks...)
		if page.NextPage == 0 || page.NextPage <= filter.Page {
			return all, nil
		}
		filter.Page = page.NextPage
	}
}
