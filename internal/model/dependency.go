package model

import "fmt"

// DependencyType is the kind of predecessor/successor edge.
type DependencyType string

const (
	DependencyFinishToStart  DependencyType = "finish_to_start"
	DependencyStartToStart   DependencyType = "start_to_start"
	DependencyFinishToFinish DependencyType = "finish_to_finish"
	DependencyStartToFinish  DependencyType = "start_to_finish"
)

// Valid reports whether d is a known dependency type.
func (d DependencyType) Valid() bool {
	switch d {
	case DependencyFinishToStart, DependencyStartToStart, DependencyFinishToFinish, DependencyStartToFinish:
		return true
	}
	return false
}

// Dependency is a predecessor -> successor edge between two tasks.
// Dependencies are informational, nothing is rescheduled from them.
type Dependency struct {
	ID               string
	PredecessorID    string
	SuccessorID      string
	Type             DependencyType
	LagDays          int
	PredecessorTitle string
	SuccessorTitle   string
}

// Validate validates the dependency.
func (d Dependency) Validate() error {
	if d.PredecessorID == "" || d.SuccessorID == "" {
		return fmt.Errorf("predecessor and successor are required: %w", ErrNotValid)
	}
	if d.PredecessorID == d.SuccessorID {
		return fmt.Errorf("task %s: %w", d.PredecessorID, ErrSelfDependency)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("unknown dependency type %q: %w", d.Type, ErrNotValid)
	}
	if d.LagDays < 0 {
		return fmt.Errorf("lag days must not be negative: %w", ErrNotValid)
	}
	return nil
}
