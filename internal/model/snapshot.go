package model

import (
	"fmt"
	"net/url"
	"time"
)

// Snapshot is the last task and dependency collection fetched from a backend.
// It is always replaced as a whole.
type Snapshot struct {
	// Source identifies the backend the collection was fetched from.
	Source       string
	FetchedAt    time.Time
	Tasks        []Task
	Dependencies []Dependency
}

// Validate validates the snapshot model.
func (s Snapshot) Validate() error {
	if err := ValidateSnapshotSource(s.Source); err != nil {
		return err
	}

	if s.FetchedAt.IsZero() {
		return fmt.Errorf("fetched at is required: %w", ErrNotValid)
	}

	ids := make(map[string]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.ID == "" {
			return fmt.Errorf("task id is required: %w", ErrNotValid)
		}
		if _, ok := ids[t.ID]; ok {
			return fmt.Errorf("task %s is duplicated: %w", t.ID, ErrNotValid)
		}
		ids[t.ID] = struct{}{}
	}

	return nil
}

// ValidateSnapshotSource validates a snapshot source, either an absolute URL or
// the name of a local backend.
func ValidateSnapshotSource(source string) error {
	if source == "" {
		return fmt.Errorf("snapshot source is required: %w", ErrNotValid)
	}

	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("snapshot source %q is invalid: %w", source, ErrNotValid)
	}
	if u.Scheme != "" && u.Host == "" && u.Opaque == "" {
		return fmt.Errorf("snapshot source %q is invalid: %w", source, ErrNotValid)
	}

	return nil
}
