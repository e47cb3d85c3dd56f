package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/backend/memory"
	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func newBackend(t *testing.T) *memory.Backend {
	t.Helper()

	b, err := memory.NewBackend(memory.BackendConfig{
		Employees: []model.Employee{
			{ID: "e1", FullName: "Alice", Active: true},
			{ID: "e2", FullName: "Bob", Active: true},
			{ID: "e3", FullName: "Carol", Active: false},
		},
		Tasks: []model.Task{
			{ID: "t1", Title: "Design", AssigneeID: "e1", DueDate: date("2024-01-20"), StartDate: date("2024-01-10"), EndDate: date("2024-01-20")},
			{ID: "t2", Title: "Build", AssigneeID: "e2", DueDate: date("2024-02-05"), StartDate: date("2024-02-01"), EndDate: date("2024-02-05")},
			{ID: "t3", Title: "Write docs", DueDate: date("2024-03-01")},
		},
		Dependencies: []model.Dependency{
			{ID: "d1", PredecessorID: "t1", SuccessorID: "t2", Type: model.DependencyFinishToStart},
		},
		PageSize: 2,
	})
	require.NoError(t, err)
	return b
}

func TestBackendTasks(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, b *memory.Backend) error
		expErr  bool
		expCode int
	}{
		"Listing should paginate and resolve assignees.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				page, err := b.ListTasks(ctx, backend.TaskFilter{})
				require.NoError(t, err)
				assert.Equal(t, 3, page.Total)
				assert.Equal(t, 2, page.NextPage)
				require.Len(t, page.Tasks, 2)
				assert.Equal(t, "Alice", page.Tasks[0].Assignee)

				all, err := backend.ListAllTasks(ctx, b, backend.TaskFilter{})
				require.NoError(t, err)
				assert.Len(t, all, 3)
				return nil
			},
		},

		"Filtering by text and due date should work.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				page, err := b.ListTasks(ctx, backend.TaskFilter{Query: "BUI"})
				require.NoError(t, err)
				require.Len(t, page.Tasks, 1)
				assert.Equal(t, "t2", page.Tasks[0].ID)

				page, err = b.ListTasks(ctx, backend.TaskFilter{DueAfter: date("2024-02-01"), DueBefore: date("2024-02-28")})
				require.NoError(t, err)
				require.Len(t, page.Tasks, 1)
				assert.Equal(t, "t2", page.Tasks[0].ID)
				return nil
			},
		},

		"Creating a task without due date should be rejected.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				_, err := b.CreateTask(ctx, backend.TaskCreate{Title: "x"})
				return err
			},
			expErr:  true,
			expCode: 400,
		},

		"Creating a task should default its status.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				task, err := b.CreateTask(ctx, backend.TaskCreate{Title: "x", DueDate: model.MustParseDate("2024-04-01"), AssigneeID: "e2"})
				require.NoError(t, err)
				assert.NotEmpty(t, task.ID)
				assert.Equal(t, model.TaskStatusNew, task.Status)
				assert.Equal(t, "Bob", task.Assignee)
				return nil
			},
		},

		"Patching should clear explicit nulls and keep omitted fields.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				status := model.TaskStatusInProgress
				task, err := b.UpdateTask(ctx, "t1", backend.TaskPatch{Status: &status, EndDate: backend.SetDate(nil)})
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusInProgress, task.Status)
				assert.Nil(t, task.EndDate)
				assert.Equal(t, "2024-01-10", task.StartDate.String())
				return nil
			},
		},

		"Patching an inverted range should be rejected.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				_, err := b.UpdateTask(ctx, "t1", backend.TaskPatch{EndDate: backend.SetDate(date("2024-01-01"))})
				return err
			},
			expErr:  true,
			expCode: 400,
		},

		"Updating a missing task should be not found.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				_, err := b.UpdateTask(ctx, "missing", backend.TaskPatch{})
				return err
			},
			expErr:  true,
			expCode: 404,
		},

		"Marking a parent done with running subtasks should be rejected.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				_, err := b.CreateTask(ctx, backend.TaskCreate{Title: "child", DueDate: model.MustParseDate("2024-04-01"), ParentID: "t3", Status: model.TaskStatusInProgress})
				require.NoError(t, err)

				done := model.TaskStatusDone
				_, err = b.UpdateTask(ctx, "t3", backend.TaskPatch{Status: &done})
				return err
			},
			expErr:  true,
			expCode: 400,
		},

		"Deleting a task should remove its dependencies.": {
			actions: func(ctx context.Context, t *testing.T, b *memory.Backend) error {
				require.NoError(t, b.DeleteTask(ctx, "t1"))
				deps, err := b.ListDependencies(ctx, backend.DependencyFilter{})
				require.NoError(t, err)
				assert.Empty(t, deps)
				return nil
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			err := test.actions(context.Background(), t, b)
			if test.expErr {
				require.Error(t, err)
				var berr *model.BackendError
				require.ErrorAs(t, err, &berr)
				assert.Equal(t, test.expCode, berr.StatusCode)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackendDependencies(t *testing.T) {
	tests := map[string]struct {
		create backend.DependencyCreate
		expErr bool
	}{
		"A new dependency should be created with the default type.": {
			create: backend.DependencyCreate{PredecessorID: "t2", SuccessorID: "t3"},
		},
		"A duplicated pair should be rejected.": {
			create: backend.DependencyCreate{PredecessorID: "t1", SuccessorID: "t2", Type: model.DependencyStartToStart},
			expErr: true,
		},
		"A self dependency should be rejected.": {
			create: backend.DependencyCreate{PredecessorID: "t1", SuccessorID: "t1", Type: model.DependencyStartToStart},
			expErr: true,
		},
		"A dependency on a missing task should be rejected.": {
			create: backend.DependencyCreate{PredecessorID: "t1", SuccessorID: "nope", Type: model.DependencyStartToStart},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			d, err := b.CreateDependency(context.Background(), test.create)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrBackend)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.DependencyFinishToStart, d.Type)
			assert.Equal(t, "Build", d.PredecessorTitle)
			assert.Equal(t, "Write docs", d.SuccessorTitle)
		})
	}
}

func TestBackendGanttDataAndEmployees(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	data, err := b.GanttData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Tasks, 2)
	assert.Equal(t, "t1", data.Tasks[0].ID)
	assert.Equal(t, "t2", data.Tasks[1].ID)
	require.Len(t, data.Dependencies, 1)
	assert.Equal(t, "Design", data.Dependencies[0].PredecessorTitle)

	employees, err := b.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Alice", employees[0].FullName)
}
