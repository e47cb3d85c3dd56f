package storage

import (
	"context"

	"github.com/taskline/taskline/internal/model"
)

// SnapshotRepository is the interface for the persisted task collection cache.
type SnapshotRepository interface {
	// SaveSnapshot replaces the snapshot of its source as a whole.
	SaveSnapshot(ctx context.Context, s model.Snapshot) error
	GetSnapshot(ctx context.Context, source string) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, source string) error
}
