package lib

import (
	"errors"
	"time"

	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/model"
)

// BackendType identifies the task backend implementation.
type BackendType string

const (
	// BackendHTTP talks to the task REST API.
	BackendHTTP BackendType = "http"

	// BackendMemory keeps the tasks in the client process.
	// Use this for unit testing and demos without a running API.
	BackendMemory BackendType = "memory"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusNew is a task nobody started yet.
	TaskStatusNew TaskStatus = "new"
	// TaskStatusInProgress is a task being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusDone is a finished task.
	TaskStatusDone TaskStatus = "done"
	// TaskStatusCancelled is an abandoned task.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// DependencyType is the scheduling relation of a dependency.
type DependencyType string

const (
	// DependencyFinishToStart is the default, the successor starts after the predecessor finishes.
	DependencyFinishToStart DependencyType = "finish_to_start"
	// DependencyStartToStart makes both tasks start together.
	DependencyStartToStart DependencyType = "start_to_start"
	// DependencyFinishToFinish makes both tasks finish together.
	DependencyFinishToFinish DependencyType = "finish_to_finish"
	// DependencyStartToFinish finishes the successor when the predecessor starts.
	DependencyStartToFinish DependencyType = "start_to_finish"
)

// Role is the role of the authenticated user.
type Role string

const (
	// RoleManager can create, edit and delete tasks and dependencies.
	RoleManager Role = "manager"
	// RoleEmployee has read only access to the timeline.
	RoleEmployee Role = "employee"
)

// Date is a calendar date without time of day.
type Date = model.Date

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	d, err := model.ParseDate(s)
	return d, mapError(err)
}

// Task represents a task returned by the SDK.
type Task struct {
	ID          string
	Title       string
	Description string
	// StartDate, EndDate and DueDate are nil when unset.
	StartDate *Date
	EndDate   *Date
	DueDate   *Date
	Status    TaskStatus
	// AssigneeID is empty for unassigned tasks.
	AssigneeID string
	// Assignee is the assignee display name.
	Assignee string
	// Priority is an opaque ordinal, only displayed.
	Priority *int
	ParentID string
	// Progress is the explicit progress (0-100) when the backend supplies one.
	Progress *int
}

// Dependency links two tasks.
type Dependency struct {
	ID               string
	PredecessorID    string
	SuccessorID      string
	Type             DependencyType
	LagDays          int
	PredecessorTitle string
	SuccessorTitle   string
}

// Employee is a possible assignee.
type Employee struct {
	ID       string
	FullName string
	Position string
	Email    string
	Active   bool
}

// Seed is the initial content of a [BackendMemory] backend.
type Seed struct {
	Employees    []Employee
	Tasks        []Task
	Dependencies []Dependency
}

// Session is the identity the client acts as.
type Session struct {
	UserID   string
	Username string
	Email    string
	Groups   []string
	Role     Role
	// CanEdit is true for managers, every mutation fails with [ErrPermission] otherwise.
	CanEdit bool
}

// Chart is a renderable Gantt chart.
//
// It is a pure description of the layout: horizontal positions are percentages
// of the timeline width so any renderer can draw it.
type Chart struct {
	// Empty is true when no task has dates, there is no timeline then and every
	// task is listed as undated.
	Empty bool
	// Min and Max are the earliest and latest task dates.
	Min Date
	Max Date
	// Months are the month buckets of the header.
	Months []MonthLabel
	// Rows are the tasks grouped by assignee, in first seen order.
	Rows         []Row
	Legend       []LegendEntry
	Dependencies []Dependency
	// CanEdit tells the renderer whether edit affordances should be shown.
	CanEdit bool
	// FetchedAt is when the tasks were fetched from the backend.
	FetchedAt time.Time
	// FromCache is true when the chart was rendered from the offline cache.
	FromCache bool
}

// MonthLabel is a month bucket placed on the timeline.
type MonthLabel struct {
	Month        Date
	LeftPercent  float64
	WidthPercent float64
}

// Row is the tasks of a single assignee.
type Row struct {
	// Assignee is the display name, "Unassigned" for tasks without assignee.
	Assignee string
	Bars     []Bar
	// Undated are the tasks without a start or end date.
	Undated []Task
}

// Bar is a task placed on the timeline.
type Bar struct {
	Task         Task
	LeftPercent  float64
	WidthPercent float64
	// Color is the hex color of the task status.
	Color string
	// Progress is the filled percentage of the bar.
	Progress int
	Selected bool
}

// LegendEntry maps a status to its color.
type LegendEntry struct {
	Status TaskStatus
	Color  string
}

// Workload is the task load of an assignee.
type Workload struct {
	AssigneeID string
	Assignee   string
	Total      int
	// Active counts the new and in progress tasks.
	Active int
	// Overdue counts the open tasks past their due date.
	Overdue int
	// Critical counts the new tasks with a subtask in progress.
	Critical int
}

// WorkloadDetail is the workload of one employee with its tasks.
type WorkloadDetail struct {
	Workload
	Tasks []Task
}

// Recommendation reasons.
const (
	// ReasonLeastLoaded marks the employees with the lightest active load.
	ReasonLeastLoaded = "least_loaded"
	// ReasonParentAssignee marks the parent task assignee when close enough to the lightest load.
	ReasonParentAssignee = "parent_assignee_within_threshold"
)

// Recommendation is an employee suggested for an [ImportantTask].
type Recommendation struct {
	EmployeeID string
	FullName   string
	Reason     string
}

// ImportantTask is a new task with at least one subtask in progress.
type ImportantTask struct {
	Task        Task
	Recommended []Recommendation
}

// EditState is the edit state of a task in an [EditSession].
type EditState string

const (
	// EditStateViewing is the read only state, every task starts here.
	EditStateViewing EditState = "viewing"
	// EditStateEditing holds an unsaved draft.
	EditStateEditing EditState = "editing"
	// EditStateSaving is a draft submitted to the backend and not resolved yet.
	EditStateSaving EditState = "saving"
)

// Draft is the unsaved copy of the editable fields of a task.
type Draft struct {
	StartDate *Date
	EndDate   *Date
	Status    TaskStatus
}

// DraftChanges are the changes of a draft. Nil fields are left untouched, an
// empty date clears it.
type DraftChanges struct {
	StartDate *string
	EndDate   *string
	Status    *TaskStatus
}

// SaveResult is the resolution of a save.
type SaveResult struct {
	Task Task
	// Applied is false when a newer action on the same task superseded the save
	// or the session was closed, Task is the backend answer anyway.
	Applied bool
}

// CreateTaskOpts configures task creation.
//
// Title is required. When DueDate is missing it is derived from EndDate, then
// StartDate plus 7 days, then today plus 7 days.
type CreateTaskOpts struct {
	Title       string
	Description string
	StartDate   *Date
	EndDate     *Date
	DueDate     *Date
	// Status defaults to [TaskStatusNew].
	Status     TaskStatus
	AssigneeID string
	Priority   *int
	ParentID   string
}

// CreateDependencyOpts configures dependency creation.
type CreateDependencyOpts struct {
	PredecessorID string
	SuccessorID   string
	// Type defaults to [DependencyFinishToStart].
	Type DependencyType
	// LagDays is clamped to 0 when negative.
	LagDays int
}

// TimelineOpts configures the timeline render.
//
// Pass nil to [Client.Timeline] to render every task fetched from the backend.
type TimelineOpts struct {
	// Offline renders the last cached tasks without calling the backend.
	Offline bool
	// RootOnly hides subtasks.
	RootOnly bool
	// AssigneeID keeps only the tasks of an assignee.
	AssigneeID string
	// SelectedTaskID highlights a task.
	SelectedTaskID string
}

// WorkloadOpts configures the workload computation.
//
// Pass nil to [Client.Workload] to list every active employee.
type WorkloadOpts struct {
	// OnlyLoaded drops employees without active tasks.
	OnlyLoaded bool
}

// Errors returned by the SDK. Use [errors.Is] to check them.
var (
	// ErrNotFound is returned when a task, dependency or cached snapshot does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned for invalid input or operations.
	ErrNotValid = errors.New("not valid")
	// ErrEmptyTimeline is returned when there are no dated tasks to lay out.
	ErrEmptyTimeline = errors.New("no dated tasks")
	// ErrInvalidRange is returned when an end date precedes its start date.
	ErrInvalidRange = errors.New("end date precedes start date")
	// ErrSelfDependency is returned when a task is made to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")
	// ErrPermission is returned when a session without edit capability mutates.
	ErrPermission = errors.New("permission denied")
	// ErrBackend is returned when the backend rejected or failed a request.
	ErrBackend = errors.New("backend error")
)

// --- Conversion helpers ---

func fromInternalTask(t model.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		DueDate:     t.DueDate,
		Status:      TaskStatus(t.Status),
		AssigneeID:  t.AssigneeID,
		Assignee:    t.Assignee,
		Priority:    t.Priority,
		ParentID:    t.ParentID,
		Progress:    t.Progress,
	}
}

func fromInternalTaskList(ts []model.Task) []Task {
	result := make([]Task, len(ts))
	for i, t := range ts {
		result[i] = fromInternalTask(t)
	}
	return result
}

func toInternalTask(t Task) model.Task {
	return model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		DueDate:     t.DueDate,
		Status:      model.TaskStatus(t.Status),
		AssigneeID:  t.AssigneeID,
		Assignee:    t.Assignee,
		Priority:    t.Priority,
		ParentID:    t.ParentID,
		Progress:    t.Progress,
	}
}

func fromInternalDependency(d model.Dependency) Dependency {
	return Dependency{
		ID:               d.ID,
		PredecessorID:    d.PredecessorID,
		SuccessorID:      d.SuccessorID,
		Type:             DependencyType(d.Type),
		LagDays:          d.LagDays,
		PredecessorTitle: d.PredecessorTitle,
		SuccessorTitle:   d.SuccessorTitle,
	}
}

func fromInternalDependencyList(ds []model.Dependency) []Dependency {
	result := make([]Dependency, len(ds))
	for i, d := range ds {
		result[i] = fromInternalDependency(d)
	}
	return result
}

func toInternalDependency(d Dependency) model.Dependency {
	return model.Dependency{
		ID:            d.ID,
		PredecessorID: d.PredecessorID,
		SuccessorID:   d.SuccessorID,
		Type:          model.DependencyType(d.Type),
		LagDays:       d.LagDays,
	}
}

func toInternalSeed(s *Seed) (employees []model.Employee, tasks []model.Task, deps []model.Dependency) {
	if s == nil {
		return nil, nil, nil
	}
	for _, e := range s.Employees {
		employees = append(employees, model.Employee{
			ID:       e.ID,
			FullName: e.FullName,
			Position: e.Position,
			Email:    e.Email,
			Active:   e.Active,
		})
	}
	for _, t := range s.Tasks {
		tasks = append(tasks, toInternalTask(t))
	}
	for _, d := range s.Dependencies {
		deps = append(deps, toInternalDependency(d))
	}
	return employees, tasks, deps
}

func fromInternalSession(s model.Session) Session {
	return Session{
		UserID:   s.User.ID,
		Username: s.User.Username,
		Email:    s.User.Email,
		Groups:   append([]string(nil), s.User.Groups...),
		Role:     Role(s.Role),
		CanEdit:  s.CanEdit,
	}
}

func fromInternalChart(c gantt.Chart) Chart {
	chart := Chart{
		Empty:        c.Empty,
		Dependencies: fromInternalDependencyList(c.Dependencies),
		CanEdit:      c.CanEdit,
	}
	if !c.Empty {
		chart.Min = c.Range.Min
		chart.Max = c.Range.Max
	}

	for _, m := range c.Header {
		chart.Months = append(chart.Months, MonthLabel{
			Month:        m.Month,
			LeftPercent:  m.LeftPercent,
			WidthPercent: m.WidthPercent,
		})
	}

	for _, r := range c.Rows {
		row := Row{Assignee: r.Assignee, Undated: fromInternalTaskList(r.Undated)}
		for _, b := range r.Bars {
			row.Bars = append(row.Bars, Bar{
				Task:         fromInternalTask(b.Task),
				LeftPercent:  b.Position.LeftPercent,
				WidthPercent: b.Position.WidthPercent,
				Color:        string(b.Color),
				Progress:     b.Progress,
				Selected:     b.Selected,
			})
		}
		chart.Rows = append(chart.Rows, row)
	}

	for _, l := range c.Legend {
		chart.Legend = append(chart.Legend, LegendEntry{Status: TaskStatus(l.Status), Color: string(l.Color)})
	}

	return chart
}

func fromInternalWorkload(ws []model.Workload) []Workload {
	result := make([]Workload, len(ws))
	for i, w := range ws {
		result[i] = Workload{
			AssigneeID: w.AssigneeID,
			Assignee:   w.Assignee,
			Total:      w.Total,
			Active:     w.Active,
			Overdue:    w.Overdue,
			Critical:   w.Critical,
		}
	}
	return result
}

func fromInternalWorkloadDetail(d model.WorkloadDetail) WorkloadDetail {
	return WorkloadDetail{
		Workload: fromInternalWorkload([]model.Workload{d.Workload})[0],
		Tasks:    fromInternalTaskList(d.Tasks),
	}
}

func fromInternalImportant(items []model.ImportantTask) []ImportantTask {
	result := make([]ImportantTask, len(items))
	for i, it := range items {
		recs := make([]Recommendation, len(it.Recommended))
		for k, r := range it.Recommended {
			recs[k] = Recommendation{EmployeeID: r.EmployeeID, FullName: r.FullName, Reason: r.Reason}
		}
		result[i] = ImportantTask{Task: fromInternalTask(it.Task), Recommended: recs}
	}
	return result
}

func fromInternalState(s edit.State) EditState {
	switch s {
	case edit.StateEditing:
		return EditStateEditing
	case edit.StateSaving:
		return EditStateSaving
	}
	return EditStateViewing
}

func fromInternalDraft(d edit.Draft) Draft {
	return Draft{StartDate: d.StartDate, EndDate: d.EndDate, Status: TaskStatus(d.Status)}
}

func toInternalDraftFields(c DraftChanges) edit.DraftFields {
	fields := edit.DraftFields{StartDate: c.StartDate, EndDate: c.EndDate}
	if c.Status != nil {
		s := model.TaskStatus(*c.Status)
		fields.Status = &s
	}
	return fields
}

// mapError maps the internal errors to the public ones, keeping the message.
// The most specific error wins.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrPermission):
		return joinErrors(err, ErrPermission)
	case errors.Is(err, model.ErrInvalidRange):
		return joinErrors(err, ErrInvalidRange)
	case errors.Is(err, model.ErrSelfDependency):
		return joinErrors(err, ErrSelfDependency)
	case errors.Is(err, model.ErrEmptyTimeline):
		return joinErrors(err, ErrEmptyTimeline)
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrBackend):
		return joinErrors(err, ErrBackend)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

// Is matches the public sentinel, a backend 404 is both ErrNotFound and ErrBackend.
func (e *mappedError) Is(target error) bool {
	if target == e.sentinel {
		return true
	}
	return target == ErrBackend && errors.Is(e.original, model.ErrBackend)
}

func (e *mappedError) Unwrap() error { return e.original }
