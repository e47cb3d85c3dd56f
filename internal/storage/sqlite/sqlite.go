package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.SnapshotRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// SaveSnapshot replaces the snapshot of a source in a single transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, s model.Snapshot) (err error) {
	if err := s.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM snapshots WHERE source = ?`, s.Source); err != nil {
		return fmt.Errorf("could not delete previous snapshot: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO snapshots (source, fetched_at) VALUES (?, ?)`, s.Source, s.FetchedAt.Unix()); err != nil {
		return fmt.Errorf("could not insert snapshot: %w", err)
	}

	taskStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_tasks (
			source, position, id, title, description,
			start_date, end_date, due_date,
			status, assignee_id, assignee,
			priority, parent_id, progress
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare task insert: %w", err)
	}
	defer taskStmt.Close()

	for i, t := range s.Tasks {
		_, err = taskStmt.ExecContext(ctx,
			s.Source, i, t.ID, t.Title, t.Description,
			dateValue(t.StartDate), dateValue(t.EndDate), dateValue(t.DueDate),
			t.Status, t.AssigneeID, t.Assignee,
			intValue(t.Priority), t.ParentID, intValue(t.Progress),
		)
		if err != nil {
			return fmt.Errorf("could not insert task %s: %w", t.ID, err)
		}
	}

	depStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_dependencies (
			source, position, id,
			predecessor_id, successor_id, type, lag_days,
			predecessor_title, successor_title
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare dependency insert: %w", err)
	}
	defer depStmt.Close()

	for i, d := range s.Dependencies {
		_, err = depStmt.ExecContext(ctx,
			s.Source, i, d.ID,
			d.PredecessorID, d.SuccessorID, d.Type, d.LagDays,
			d.PredecessorTitle, d.SuccessorTitle,
		)
		if err != nil {
			return fmt.Errorf("could not insert dependency %s: %w", d.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit snapshot: %w", err)
	}

	r.logger.Debugf("Saved snapshot of %s with %d tasks and %d dependencies", s.Source, len(s.Tasks), len(s.Dependencies))
	return nil
}

// GetSnapshot returns the snapshot of a source.
func (r *Repository) GetSnapshot(ctx context.Context, source string) (*model.Snapshot, error) {
	var fetchedAt int64
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at FROM snapshots WHERE source = ?`, source).Scan(&fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot of %s: %w", source, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query snapshot: %w", err)
	}

	tasks, err := r.tasks(ctx, source)
	if err != nil {
		return nil, err
	}
	deps, err := r.dependencies(ctx, source)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Source:       source,
		FetchedAt:    timeFromUnix(fetchedAt),
		Tasks:        tasks,
		Dependencies: deps,
	}, nil
}

// ListSnapshots returns every snapshot, most recently fetched first.
func (r *Repository) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source FROM snapshots ORDER BY fetched_at DESC, source`)
	if err != nil {
		return nil, fmt.Errorf("could not query snapshots: %w", err)
	}

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			rows.Close()
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	rows.Close()

	snapshots := make([]model.Snapshot, 0, len(sources))
	for _, source := range sources {
		s, err := r.GetSnapshot(ctx, source)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}

	return snapshots, nil
}

// DeleteSnapshot deletes the snapshot of a source.
func (r *Repository) DeleteSnapshot(ctx context.Context, source string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("could not delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot of %s: %w", source, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted snapshot of %s", source)
	return nil
}

func (r *Repository) tasks(ctx context.Context, source string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, title, description,
			start_date, end_date, due_date,
			status, assignee_id, assignee,
			priority, parent_id, progress
		FROM snapshot_tasks
		WHERE source = ?
		ORDER BY position
	`, source)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var start, end, due sql.NullString
		var priority, progress sql.NullInt64

		err := rows.Scan(
			&t.ID, &t.Title, &t.Description,
			&start, &end, &due,
			&t.Status, &t.AssigneeID, &t.Assignee,
			&priority, &t.ParentID, &progress,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}

		if t.StartDate, err = dateFromNull(start); err != nil {
			return nil, err
		}
		if t.EndDate, err = dateFromNull(end); err != nil {
			return nil, err
		}
		if t.DueDate, err = dateFromNull(due); err != nil {
			return nil, err
		}
		t.Priority = intFromNull(priority)
		t.Progress = intFromNull(progress)

		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func (r *Repository) dependencies(ctx context.Context, source string) ([]model.Dependency, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, predecessor_id, successor_id, type, lag_days,
			predecessor_title, successor_title
		FROM snapshot_dependencies
		WHERE source = ?
		ORDER BY position
	`, source)
	if err != nil {
		return nil, fmt.Errorf("could not query dependencies: %w", err)
	}
	defer rows.Close()

	deps := []model.Dependency{}
	for rows.Next() {
		var d model.Dependency
		err := rows.Scan(
			&d.ID, &d.PredecessorID, &d.SuccessorID, &d.Type, &d.LagDays,
			&d.PredecessorTitle, &d.SuccessorTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return deps, nil
}

func dateValue(d *model.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func intValue(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func dateFromNull(s sql.NullString) (*model.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s.String)
	if err != nil {
		return nil, fmt.Errorf("could not parse stored date: %w", err)
	}
	return &d, nil
}

func intFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
