package workload

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ServiceConfig is the configuration for the workload service.
type ServiceConfig struct {
	Backend backend.Backend
	Now     func() time.Time
	Logger  log.Logger
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Workload"})

	return nil
}

// Service computes the workload of every active employee.
type Service struct {
	backend backend.Backend
	now     func() time.Time
	logger  log.Logger
}

// NewService creates a new workload service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the workload request parameters.
type Request struct {
	// OnlyLoaded drops employees without active tasks.
	OnlyLoaded bool
}

// Run returns the workload rows, busiest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Workload, error) {
	employees, err := s.backend.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list employees: %w", err)
	}

	tasks, err := backend.ListAllTasks(ctx, s.backend, backend.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	rows := Compute(employees, tasks, model.DateOf(s.now()))
	if req.OnlyLoaded {
		loaded := rows[:0]
		for _, r := range rows {
			if r.Active > 0 {
				loaded = append(loaded, r)
			}
		}
		rows = loaded
	}

	s.logger.Debugf("Computed workload of %d employees over %d tasks", len(rows), len(tasks))
	return rows, nil
}

// Detail returns the workload of one employee, active or not, with its tasks.
func (s *Service) Detail(ctx context.Context, employeeID string) (*model.WorkloadDetail, error) {
	employees, err := s.backend.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list employees: %w", err)
	}

	var employee *model.Employee
	for i := range employees {
		if employees[i].ID == employeeID {
			employee = &employees[i]
			break
		}
	}
	if employee == nil {
		return nil, fmt.Errorf("employee %q: %w", employeeID, model.ErrNotFound)
	}

	tasks, err := backend.ListAllTasks(ctx, s.backend, backend.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	d := ComputeDetail(*employee, tasks, model.DateOf(s.now()))
	return &d, nil
}

// Compute returns one row per active employee, plus one per unknown assignee
// holding tasks. Unassigned tasks are not counted. Rows are sorted by active
// tasks descending then by name.
func Compute(employees []model.Employee, tasks []model.Task, today model.Date) []model.Workload {
	index := map[string]int{}
	rows := []model.Workload{}
	for _, e := range employees {
		if !e.Active {
			continue
		}
		index[e.ID] = len(rows)
		rows = append(rows, model.Workload{AssigneeID: e.ID, Assignee: e.FullName})
	}

	blocking := parentsInProgress(tasks)
	for _, t := range tasks {
		if t.AssigneeID == "" {
			continue
		}

		i, ok := index[t.AssigneeID]
		if !ok {
			i = len(rows)
			index[t.AssigneeID] = i
			rows = append(rows, model.Workload{AssigneeID: t.AssigneeID, Assignee: t.Assignee})
		}
		tally(&rows[i], t, today, blocking)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Active != rows[j].Active {
			return rows[i].Active > rows[j].Active
		}
		return rows[i].Assignee < rows[j].Assignee
	})

	return rows
}

// ComputeDetail returns the workload of a single employee and its tasks in
// their listing order.
func ComputeDetail(employee model.Employee, tasks []model.Task, today model.Date) model.WorkloadDetail {
	d := model.WorkloadDetail{
		Workload: model.Workload{AssigneeID: employee.ID, Assignee: employee.FullName},
		Tasks:    []model.Task{},
	}

	blocking := parentsInProgress(tasks)
	for _, t := range tasks {
		if t.AssigneeID != employee.ID {
			continue
		}
		tally(&d.Workload, t, today, blocking)
		d.Tasks = append(d.Tasks, t)
	}

	return d
}

func tally(w *model.Workload, t model.Task, today model.Date, blocking map[string]bool) {
	w.Total++
	if t.Status.Active() {
		w.Active++
	}
	if t.Overdue(today) {
		w.Overdue++
	}
	if t.Status == model.TaskStatusNew && blocking[t.ID] {
		w.Critical++
	}
}

// parentsInProgress returns the IDs of the tasks with a subtask in progress.
func parentsInProgress(tasks []model.Task) map[string]bool {
	ids := map[string]bool{}
	for _, t := range tasks {
		if t.ParentID != "" && t.Status == model.TaskStatusInProgress {
			ids[t.ParentID] = true
		}
	}
	return ids
}
