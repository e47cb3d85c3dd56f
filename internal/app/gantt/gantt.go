package gantt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/storage"
)

// ServiceConfig is the configuration for the gantt service.
type ServiceConfig struct {
	// Backend is optional when there is a cache, only offline renders work then.
	Backend backend.Backend
	// Cache is optional, when set every fetched collection is stored and offline
	// renders read from it.
	Cache   storage.SnapshotRepository
	Source  string
	Session model.Session
	Now     func() time.Time
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Backend == nil && c.Cache == nil {
		return fmt.Errorf("backend or cache is required")
	}

	if c.Cache != nil && c.Source == "" {
		return fmt.Errorf("source is required with a cache")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Gantt"})

	return nil
}

// Service builds the Gantt chart of the backend tasks.
type Service struct {
	backend backend.Backend
	cache   storage.SnapshotRepository
	source  string
	session model.Session
	now     func() time.Time
	logger  log.Logger
}

// NewService creates a new gantt service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		backend: cfg.Backend,
		cache:   cfg.Cache,
		source:  cfg.Source,
		session: cfg.Session,
		now:     cfg.Now,
		logger:  cfg.Logger,
	}, nil
}

// Request represents the gantt request parameters.
type Request struct {
	// Offline renders the cached snapshot without calling the backend.
	Offline bool
	// RootOnly hides subtasks.
	RootOnly bool
	// AssigneeID keeps only the tasks of an assignee.
	AssigneeID string
	// SelectedTaskID highlights a task.
	SelectedTaskID string
}

// Response is the rendered chart.
type Response struct {
	Chart     gantt.Chart
	FetchedAt time.Time
	FromCache bool
}

// Run fetches the tasks and renders the chart.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	snapshot, fromCache, err := s.snapshot(ctx, req.Offline)
	if err != nil {
		return nil, err
	}

	tasks := filterTasks(snapshot.Tasks, req)
	deps := filterDependencies(snapshot.Dependencies, tasks)

	var sel gantt.Selection
	if req.SelectedTaskID != "" {
		sel.Toggle(req.SelectedTaskID)
	}

	chart := gantt.Render(tasks, deps, gantt.Options{
		CanEdit:   s.session.CanEdit,
		Selection: sel,
	})

	s.logger.Debugf("Rendered %d tasks in %d rows (cache: %t)", len(tasks), len(chart.Rows), fromCache)
	return &Response{Chart: chart, FetchedAt: snapshot.FetchedAt, FromCache: fromCache}, nil
}

func (s *Service) snapshot(ctx context.Context, offline bool) (*model.Snapshot, bool, error) {
	if offline {
		if s.cache == nil {
			return nil, false, fmt.Errorf("offline mode needs a cache: %w", model.ErrNotValid)
		}
		snapshot, err := s.cache.GetSnapshot(ctx, s.source)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, false, fmt.Errorf("nothing cached for %s yet, run it online first: %w", s.source, err)
			}
			return nil, false, fmt.Errorf("could not get cached snapshot: %w", err)
		}
		return snapshot, true, nil
	}

	if s.backend == nil {
		return nil, false, fmt.Errorf("online mode needs a backend: %w", model.ErrNotValid)
	}

	tasks, err := backend.ListAllTasks(ctx, s.backend, backend.TaskFilter{})
	if err != nil {
		return nil, false, fmt.Errorf("could not list tasks: %w", err)
	}
	deps, err := s.backend.ListDependencies(ctx, backend.DependencyFilter{})
	if err != nil {
		return nil, false, fmt.Errorf("could not list dependencies: %w", err)
	}
	s.withExplicitProgress(ctx, tasks)
	sortByStart(tasks)

	snapshot := &model.Snapshot{
		Source:       s.source,
		FetchedAt:    s.now().UTC(),
		Tasks:        tasks,
		Dependencies: deps,
	}

	// A cache failure never fails an online render.
	if s.cache != nil {
		if err := s.cache.SaveSnapshot(ctx, *snapshot); err != nil {
			s.logger.Warningf("Could not cache snapshot: %s", err)
		}
	}

	return snapshot, false, nil
}

// withExplicitProgress copies the progress the gantt view reports onto the
// tasks. The view only carries dated tasks and assignee names, so it never
// sources the tasks themselves. Without it the progress is implied by the status.
func (s *Service) withExplicitProgress(ctx context.Context, tasks []model.Task) {
	data, err := s.backend.GanttData(ctx)
	if err != nil {
		s.logger.Warningf("Could not get explicit progress, using status progress: %s", err)
		return
	}

	progress := make(map[string]*int, len(data.Tasks))
	for _, t := range data.Tasks {
		if t.Progress != nil {
			progress[t.ID] = t.Progress
		}
	}
	for i := range tasks {
		if p, ok := progress[tasks[i].ID]; ok && tasks[i].Progress == nil {
			tasks[i].Progress = p
		}
	}
}

// sortByStart orders the dated tasks by start date, undated tasks go last in
// backend order.
func sortByStart(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].StartDate, tasks[j].StartDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

func filterTasks(tasks []model.Task, req Request) []model.Task {
	if !req.RootOnly && req.AssigneeID == "" {
		return tasks
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if req.RootOnly && t.ParentID != "" {
			continue
		}
		if req.AssigneeID != "" && t.AssigneeID != req.AssigneeID {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// filterDependencies keeps the links whose both ends are visible.
func filterDependencies(deps []model.Dependency, tasks []model.Task) []model.Dependency {
	visible := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		visible[t.ID] = true
	}

	filtered := make([]model.Dependency, 0, len(deps))
	for _, d := range deps {
		if visible[d.PredecessorID] && visible[d.SuccessorID] {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
