package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.SnapshotRepository.
type Repository struct {
	snapshots map[string]model.Snapshot
	mu        sync.RWMutex
	logger    log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		snapshots: make(map[string]model.Snapshot),
		logger:    cfg.Logger,
	}, nil
}

// SaveSnapshot replaces the snapshot of a source.
func (r *Repository) SaveSnapshot(ctx context.Context, s model.Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[s.Source] = copySnapshot(s)
	r.logger.Debugf("Saved snapshot of %s", s.Source)
	return nil
}

// GetSnapshot returns the snapshot of a source.
func (r *Repository) GetSnapshot(ctx context.Context, source string) (*model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[source]
	if !ok {
		return nil, fmt.Errorf("snapshot of %s: %w", source, model.ErrNotFound)
	}

	cp := copySnapshot(s)
	return &cp, nil
}

// ListSnapshots returns every snapshot, most recently fetched first.
func (r *Repository) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]model.Snapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		snapshots = append(snapshots, copySnapshot(s))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].FetchedAt.Equal(snapshots[j].FetchedAt) {
			return snapshots[i].FetchedAt.After(snapshots[j].FetchedAt)
		}
		return snapshots[i].Source < snapshots[j].Source
	})

	return snapshots, nil
}

// DeleteSnapshot deletes the snapshot of a source.
func (r *Repository) DeleteSnapshot(ctx context.Context, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshots[source]; !ok {
		return fmt.Errorf("snapshot of %s: %w", source, model.ErrNotFound)
	}
	delete(r.snapshots, source)

	r.logger.Debugf("Deleted snapshot of %s", source)
	return nil
}

// copySnapshot copies the collections so callers can't mutate the stored snapshot.
func copySnapshot(s model.Snapshot) model.Snapshot {
	s.Tasks = append([]model.Task{}, s.Tasks...)
	s.Dependencies = append([]model.Dependency{}, s.Dependencies...)
	return s
}
