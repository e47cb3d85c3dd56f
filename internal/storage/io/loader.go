package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/taskline/taskline/internal/model"
)

// Fixture is a task dataset used to seed a local backend.
type Fixture struct {
	Employees    []model.Employee
	Tasks        []model.Task
	Dependencies []model.Dependency
}

// FixtureYAMLRepository loads task fixtures from YAML files.
type FixtureYAMLRepository struct {
	fs fs.FS
}

// NewFixtureYAMLRepository creates a new YAML fixture repository.
func NewFixtureYAMLRepository(filesystem fs.FS) *FixtureYAMLRepository {
	return &FixtureYAMLRepository{fs: filesystem}
}

// GetFixture loads a fixture from a YAML file and returns validated domain models.
func (r *FixtureYAMLRepository) GetFixture(ctx context.Context, path string) (*Fixture, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var f FixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	fixture, err := f.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return fixture, nil
}

// FixtureFile represents the YAML structure of a fixture.
type FixtureFile struct {
	Employees    []EmployeeFile   `yaml:"employees"`
	Tasks        []TaskFile       `yaml:"tasks"`
	Dependencies []DependencyFile `yaml:"dependencies"`
}

// EmployeeFile represents the YAML structure of an employee.
type EmployeeFile struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"full_name"`
	Position string `yaml:"position"`
	Email    string `yaml:"email"`
	// Active defaults to true.
	Active *bool `yaml:"active"`
}

// TaskFile represents the YAML structure of a task.
type TaskFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	DueDate     string `yaml:"due_date"`
	Status      string `yaml:"status"`
	Assignee    string `yaml:"assignee"`
	Priority    *int   `yaml:"priority"`
	Parent      string `yaml:"parent"`
	Progress    *int   `yaml:"progress"`
}

// DependencyFile represents the YAML structure of a dependency.
type DependencyFile struct {
	ID          string `yaml:"id"`
	Predecessor string `yaml:"predecessor"`
	Successor   string `yaml:"successor"`
	Type        string `yaml:"type"`
	LagDays     int    `yaml:"lag_days"`
}

func (f FixtureFile) toModel() (*Fixture, error) {
	fixture := &Fixture{}

	names := map[string]string{}
	for i, e := range f.Employees {
		if e.ID == "" || e.FullName == "" {
			return nil, fmt.Errorf("employee %d: id and full_name are required", i)
		}
		if _, ok := names[e.ID]; ok {
			return nil, fmt.Errorf("employee %s is duplicated", e.ID)
		}
		names[e.ID] = e.FullName

		active := true
		if e.Active != nil {
			active = *e.Active
		}
		fixture.Employees = append(fixture.Employees, model.Employee{
			ID:       e.ID,
			FullName: e.FullName,
			Position: e.Position,
			Email:    e.Email,
			Active:   active,
		})
	}

	ids := map[string]struct{}{}
	for i, tf := range f.Tasks {
		t, err := tf.toModel()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if _, ok := ids[t.ID]; ok {
			return nil, fmt.Errorf("task %s is duplicated", t.ID)
		}
		ids[t.ID] = struct{}{}

		if t.AssigneeID != "" {
			name, ok := names[t.AssigneeID]
			if !ok {
				return nil, fmt.Errorf("task %s: unknown assignee %q", t.ID, t.AssigneeID)
			}
			t.Assignee = name
		}
		fixture.Tasks = append(fixture.Tasks, t)
	}

	for i, df := range f.Dependencies {
		typ := model.DependencyType(df.Type)
		if typ == "" {
			typ = model.DependencyFinishToStart
		}
		d := model.Dependency{
			ID:            df.ID,
			PredecessorID: df.Predecessor,
			SuccessorID:   df.Successor,
			Type:          typ,
			LagDays:       df.LagDays,
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("dependency %d: %w", i, err)
		}
		for _, id := range []string{d.PredecessorID, d.SuccessorID} {
			if _, ok := ids[id]; !ok {
				return nil, fmt.Errorf("dependency %d: unknown task %q", i, id)
			}
		}
		fixture.Dependencies = append(fixture.Dependencies, d)
	}

	return fixture, nil
}

func (tf TaskFile) toModel() (model.Task, error) {
	if tf.ID == "" {
		return model.Task{}, fmt.Errorf("id is required")
	}

	status := model.TaskStatusNew
	if tf.Status != "" {
		s, err := model.ParseTaskStatus(tf.Status)
		if err != nil {
			return model.Task{}, err
		}
		status = s
	}

	t := model.Task{
		ID:          tf.ID,
		Title:       tf.Title,
		Description: tf.Description,
		Status:      status,
		AssigneeID:  tf.Assignee,
		Priority:    tf.Priority,
		ParentID:    tf.Parent,
		Progress:    tf.Progress,
	}

	var err error
	if t.StartDate, err = optionalDate(tf.StartDate); err != nil {
		return model.Task{}, fmt.Errorf("start_date: %w", err)
	}
	if t.EndDate, err = optionalDate(tf.EndDate); err != nil {
		return model.Task{}, fmt.Errorf("end_date: %w", err)
	}
	if t.DueDate, err = optionalDate(tf.DueDate); err != nil {
		return model.Task{}, fmt.Errorf("due_date: %w", err)
	}

	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func optionalDate(s string) (*model.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
