package rest

import (
	"encoding/json"

	"github.com/taskline/taskline/internal/model"
)

// backendUnassigned is the label the gantt endpoint uses for tasks without assignee.
const backendUnassigned = "Не назначен"

type employeeDTO struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Position string `json:"position"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (e employeeDTO) toModel() model.Employee {
	return model.Employee{
		ID:       e.ID,
		FullName: e.FullName,
		Position: e.Position,
		Email:    e.Email,
		Active:   e.IsActive,
	}
}

type taskDTO struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Parent      *string          `json:"parent"`
	Assignee    *employeeDTO     `json:"assignee"`
	DueDate     *model.Date      `json:"due_date"`
	StartDate   *model.Date      `json:"start_date"`
	EndDate     *model.Date      `json:"end_date"`
	Status      model.TaskStatus `json:"status"`
	Priority    *int             `json:"priority"`
}

func (t taskDTO) toModel() model.Task {
	task := model.Task{
		ID:        t.ID,
		Title:     t.Title,
		DueDate:   nonZero(t.DueDate),
		StartDate: nonZero(t.StartDate),
		EndDate:   nonZero(t.EndDate),
		Status:    t.Status,
		Priority:  t.Priority,
	}
	if t.Description != nil {
		task.Description = *t.Description
	}
	if t.Parent != nil {
		task.ParentID = *t.Parent
	}
	if t.Assignee != nil {
		task.AssigneeID = t.Assignee.ID
		task.Assignee = t.Assignee.FullName
	}
	return task
}

// nonZero drops dates decoded from null.
func nonZero(d *model.Date) *model.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

type taskCreateDTO struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	DueDate     model.Date       `json:"due_date"`
	StartDate   *model.Date      `json:"start_date"`
	EndDate     *model.Date      `json:"end_date"`
	Status      model.TaskStatus `json:"status,omitempty"`
	AssigneeID  *string          `json:"assignee_id,omitempty"`
	Priority    *int             `json:"priority,omitempty"`
	Parent      *string          `json:"parent,omitempty"`
}

type dependencyDTO struct {
	ID               string               `json:"id,omitempty"`
	Predecessor      string               `json:"predecessor"`
	Successor        string               `json:"successor"`
	PredecessorTitle string               `json:"predecessor_title,omitempty"`
	SuccessorTitle   string               `json:"successor_title,omitempty"`
	DependencyType   model.DependencyType `json:"dependency_type"`
	LagDays          int                  `json:"lag_days"`
}

func (d dependencyDTO) toModel() model.Dependency {
	return model.Dependency{
		ID:               d.ID,
		PredecessorID:    d.Predecessor,
		SuccessorID:      d.Successor,
		Type:             d.DependencyType,
		LagDays:          d.LagDays,
		PredecessorTitle: d.PredecessorTitle,
		SuccessorTitle:   d.SuccessorTitle,
	}
}

type ganttTaskDTO struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	StartDate *model.Date      `json:"start_date"`
	EndDate   *model.Date      `json:"end_date"`
	Progress  *int             `json:"progress"`
	Assignee  string           `json:"assignee"`
	Status    model.TaskStatus `json:"status"`
	Priority  *int             `json:"priority"`
	Parent    *string          `json:"parent"`
}

func (g ganttTaskDTO) toModel() model.Task {
	t := model.Task{
		ID:        g.ID,
		Title:     g.Text,
		StartDate: nonZero(g.StartDate),
		EndDate:   nonZero(g.EndDate),
		Progress:  g.Progress,
		Status:    g.Status,
		Priority:  g.Priority,
	}
	if g.Assignee != backendUnassigned {
		t.Assignee = g.Assignee
	}
	if g.Parent != nil {
		t.ParentID = *g.Parent
	}
	return t
}

type ganttLinkDTO struct {
	ID     string               `json:"id"`
	Source string               `json:"source"`
	Target string               `json:"target"`
	Type   model.DependencyType `json:"type"`
	Lag    int                  `json:"lag"`
}

type ganttDTO struct {
	Tasks []ganttTaskDTO `json:"tasks"`
	Links []ganttLinkDTO `json:"links"`
}

// pageDTO is a paginated listing, the results are decoded by the caller.
type pageDTO struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// patchBody builds a PATCH body where cleared dates are sent as explicit nulls.
func patchBody(fields map[string]any, key string, set bool, value *model.Date) {
	if !set {
		return
	}
	if value == nil {
		fields[key] = nil
		return
	}
	fields[key] = value.String()
}
