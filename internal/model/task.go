package model

import (
	"fmt"
	"strings"
)

// TaskStatus represents the status of a task.
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

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskStatusNew, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// ParseTaskStatus parses a status, case insensitive.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q (must be: new, in_progress, done, cancelled): %w", s, ErrNotValid)
	}
	return status, nil
}

// Active reports whether the status counts towards an assignee's workload.
func (s TaskStatus) Active() bool {
	return s == TaskStatusNew || s == TaskStatusInProgress
}

// Task is a task as consumed by the timeline.
type Task struct {
	ID          string
	Title       string
	Description string
	StartDate   *Date
	EndDate     *Date
	DueDate     *Date
	Status      TaskStatus
	AssigneeID  string
	// Assignee is the assignee display name, empty when unassigned.
	Assignee string
	// Priority is an opaque display-only ordinal.
	Priority *int
	ParentID string
	// Progress is the explicit progress (0-100) when the backend supplies one.
	Progress *int
}

// Dated reports whether the task has both start and end dates.
func (t Task) Dated() bool {
	return t.StartDate != nil && t.EndDate != nil
}

// Overdue reports whether an open task is past its due date.
func (t Task) Overdue(today Date) bool {
	if t.Status == TaskStatusDone || t.Status == TaskStatusCancelled {
		return false
	}
	return t.DueDate != nil && t.DueDate.Before(today)
}

// Validate validates the dates of the task.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrNotValid)
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", t.Status, ErrNotValid)
	}
	return ValidateRange(t.StartDate, t.EndDate)
}

// ValidateRange checks that end is not before start when both are set.
func ValidateRange(start, end *Date) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("end %s is before start %s: %w", end, start, ErrInvalidRange)
	}
	return nil
}
