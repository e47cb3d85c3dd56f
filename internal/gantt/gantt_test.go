package gantt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func ids(tasks []model.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestGroupByAssignee(t *testing.T) {
	tests := map[string]struct {
		tasks     []model.Task
		expGroups map[string][]string
		expOrder  []string
	}{
		"Tasks should be grouped by first seen assignee keeping input order.": {
			tasks: []model.Task{
				{ID: "1", Assignee: "Bob"},
				{ID: "2", Assignee: "Alice"},
				{ID: "3"},
				{ID: "4", Assignee: "Bob"},
				{ID: "5"},
			},
			expOrder: []string{"Bob", "Alice", gantt.Unassigned},
			expGroups: map[string][]string{
				"Bob":            {"1", "4"},
				"Alice":          {"2"},
				gantt.Unassigned: {"3", "5"},
			},
		},

		"No tasks should produce no groups.": {
			expOrder:  []string{},
			expGroups: map[string][]string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			groups := gantt.GroupByAssignee(test.tasks)

			order := []string{}
			var all []model.Task
			for _, g := range groups {
				order = append(order, g.Assignee)
				assert.Equal(t, test.expGroups[g.Assignee], ids(g.Tasks))
				all = append(all, g.Tasks...)
			}
			assert.Equal(t, test.expOrder, order)
			assert.ElementsMatch(t, ids(test.tasks), ids(all))
		})
	}
}

func TestStatusColorAndProgress(t *testing.T) {
	tests := map[string]struct {
		status      model.TaskStatus
		expColor    gantt.Color
		expProgress int
	}{
		"New should be gray with no progress.":          {status: model.TaskStatusNew, expColor: "#6B7280", expProgress: 0},
		"In progress should be blue and half done.":     {status: model.TaskStatusInProgress, expColor: "#3B82F6", expProgress: 50},
		"Done should be green and complete.":            {status: model.TaskStatusDone, expColor: "#10B981", expProgress: 100},
		"Cancelled should be red with no progress.":     {status: model.TaskStatusCancelled, expColor: "#EF4444", expProgress: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expColor, gantt.StatusColor(test.status))
			assert.Equal(t, test.expProgress, gantt.ImplicitProgress(test.status))
			assert.Equal(t, test.expProgress, gantt.Progress(model.Task{Status: test.status}))
		})
	}

	explicit := 30
	assert.Equal(t, 30, gantt.Progress(model.Task{Status: model.TaskStatusDone, Progress: &explicit}))
}

func TestSelection(t *testing.T) {
	var s gantt.Selection

	_, ok := s.Selected()
	assert.False(t, ok)

	s.Toggle("a")
	assert.True(t, s.IsSelected("a"))

	s.Toggle("b")
	assert.False(t, s.IsSelected("a"))
	assert.True(t, s.IsSelected("b"))

	s.Toggle("b")
	_, ok = s.Selected()
	assert.False(t, ok)

	s.Toggle("c")
	s.Clear()
	assert.False(t, s.IsSelected("c"))
}

func TestRender(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Assignee: "Alice", Status: model.TaskStatusInProgress, StartDate: date("2024-01-10"), EndDate: date("2024-01-20")},
		{ID: "b", Assignee: "Bob", Status: model.TaskStatusDone, StartDate: date("2024-02-01"), EndDate: date("2024-02-05")},
		{ID: "c", Assignee: "Alice", Status: model.TaskStatusNew},
	}
	deps := []model.Dependency{{ID: "d1", PredecessorID: "a", SuccessorID: "b", Type: model.DependencyFinishToStart}}

	var sel gantt.Selection
	sel.Toggle("b")

	chart := gantt.Render(tasks, deps, gantt.Options{CanEdit: true, Selection: sel})

	require.False(t, chart.Empty)
	assert.True(t, chart.CanEdit)
	assert.Equal(t, "2024-01-10", chart.Range.Min.String())
	assert.Equal(t, "2024-02-05", chart.Range.Max.String())
	require.Len(t, chart.Header, 2)
	assert.InDelta(t, 0, chart.Header[0].LeftPercent, 1e-9)
	assert.InDelta(t, 100*22.0/26, chart.Header[1].LeftPercent, 1e-9)
	assert.Len(t, chart.Legend, 4)
	assert.Equal(t, deps, chart.Dependencies)

	require.Len(t, chart.Rows, 2)
	alice := chart.Rows[0]
	assert.Equal(t, "Alice", alice.Assignee)
	require.Len(t, alice.Bars, 1)
	assert.Equal(t, gantt.ColorBlue, alice.Bars[0].Color)
	assert.Equal(t, 50, alice.Bars[0].Progress)
	assert.False(t, alice.Bars[0].Selected)
	assert.Equal(t, []string{"c"}, ids(alice.Undated))

	bob := chart.Rows[1]
	require.Len(t, bob.Bars, 1)
	assert.InDelta(t, 84.615, bob.Bars[0].Position.LeftPercent, 0.001)
	assert.True(t, bob.Bars[0].Selected)
}

func TestRenderEmpty(t *testing.T) {
	tasks := []model.Task{{ID: "a", Title: "undated"}}

	chart := gantt.Render(tasks, nil, gantt.Options{})

	assert.True(t, chart.Empty)
	assert.Empty(t, chart.Header)
	require.Len(t, chart.Rows, 1)
	assert.Equal(t, gantt.Unassigned, chart.Rows[0].Assignee)
	assert.Empty(t, chart.Rows[0].Bars)
	assert.Equal(t, []string{"a"}, ids(chart.Rows[0].Undated))
}

func TestRenderInvertedRange(t *testing.T) {
	tasks := []model.Task{
		{ID: "ok", Assignee: "Alice", StartDate: date("2024-01-01"), EndDate: date("2024-01-31")},
		{ID: "bad", Assignee: "Alice", StartDate: date("2024-01-20"), EndDate: date("2024-01-10")},
	}

	chart := gantt.Render(tasks, nil, gantt.Options{})

	require.False(t, chart.Empty)
	require.Len(t, chart.Rows, 1)
	require.Len(t, chart.Rows[0].Bars, 1)
	assert.Equal(t, "ok", chart.Rows[0].Bars[0].Task.ID)
	assert.Equal(t, []string{"bad"}, ids(chart.Rows[0].Undated))
}
