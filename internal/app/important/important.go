package important

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// ParentThreshold is how many active tasks above the lightest load the parent
// task assignee may carry and still be recommended.
const ParentThreshold = 2

// ServiceConfig is the configuration for the important tasks service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Important"})

	return nil
}

// Service lists the important tasks and who could take them.
type Service struct {
	backend backend.Backend
	logger  log.Logger
}

// NewService creates a new important tasks service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the important tasks request parameters.
type Request struct {
	// Limit keeps the first tasks only, zero keeps all of them.
	Limit int
}

// Run returns the important tasks, most urgent first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.ImportantTask, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative: %w", model.ErrNotValid)
	}

	employees, err := s.backend.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list employees: %w", err)
	}

	tasks, err := backend.ListAllTasks(ctx, s.backend, backend.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	items := Compute(employees, tasks)
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}

	s.logger.Debugf("Found %d important tasks over %d tasks", len(items), len(tasks))
	return items, nil
}

// Compute returns the new tasks having at least one subtask in progress,
// sorted by due date ascending with undated ones last, then by priority
// descending.
//
// Every task recommends the active employees with the lightest active load,
// followed by the assignee of its parent task when that employee is active
// and within ParentThreshold of the lightest load.
func Compute(employees []model.Employee, tasks []model.Task) []model.ImportantTask {
	byID := make(map[string]model.Task, len(tasks))
	blocking := map[string]bool{}
	load := map[string]int{}
	for _, t := range tasks {
		byID[t.ID] = t
		if t.ParentID != "" && t.Status == model.TaskStatusInProgress {
			blocking[t.ParentID] = true
		}
		if t.AssigneeID != "" && t.Status.Active() {
			load[t.AssigneeID]++
		}
	}

	active := []model.Employee{}
	for _, e := range employees {
		if e.Active {
			active = append(active, e)
		}
	}

	minLoad := 0
	for i, e := range active {
		if i == 0 || load[e.ID] < minLoad {
			minLoad = load[e.ID]
		}
	}

	leastLoaded := []model.Recommendation{}
	for _, e := range active {
		if load[e.ID] == minLoad {
			leastLoaded = append(leastLoaded, model.Recommendation{EmployeeID: e.ID, FullName: e.FullName, Reason: model.ReasonLeastLoaded})
		}
	}

	items := []model.ImportantTask{}
	for _, t := range tasks {
		if t.Status != model.TaskStatusNew || !blocking[t.ID] {
			continue
		}

		recs := append([]model.Recommendation{}, leastLoaded...)
		if rec, ok := parentAssignee(t, byID, active, load, minLoad); ok && !recommended(recs, rec.EmployeeID) {
			recs = append(recs, rec)
		}
		items = append(items, model.ImportantTask{Task: t, Recommended: recs})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Task, items[j].Task
		switch {
		case a.DueDate == nil && b.DueDate == nil:
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return priority(a) > priority(b)
	})

	return items
}

func parentAssignee(t model.Task, byID map[string]model.Task, active []model.Employee, load map[string]int, minLoad int) (model.Recommendation, bool) {
	parent, ok := byID[t.ParentID]
	if !ok || parent.AssigneeID == "" {
		return model.Recommendation{}, false
	}

	for _, e := range active {
		if e.ID != parent.AssigneeID {
			continue
		}
		if load[e.ID] > minLoad+ParentThreshold {
			return model.Recommendation{}, false
		}
		return model.Recommendation{EmployeeID: e.ID, FullName: e.FullName, Reason: model.ReasonParentAssignee}, true
	}

	return model.Recommendation{}, false
}

func recommended(recs []model.Recommendation, employeeID string) bool {
	for _, r := range recs {
		if r.EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// priority treats a missing priority as the lowest one.
func priority(t model.Task) int {
	if t.Priority == nil {
		return math.MinInt
	}
	return *t.Priority
}
