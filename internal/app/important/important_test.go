package important_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/app/important"
	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/backend/backendmock"
	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func prio(p int) *int { return &p }

func employees() []model.Employee {
	return []model.Employee{
		{ID: "e1", FullName: "Alice", Active: true},
		{ID: "e2", FullName: "Bob", Active: true},
		{ID: "e3", FullName: "Carol", Active: true},
		{ID: "e4", FullName: "Dave", Active: false},
	}
}

// Loads: Alice 3, Bob 1, Carol 1.
func tasks() []model.Task {
	return []model.Task{
		{ID: "root", AssigneeID: "e1", Status: model.TaskStatusInProgress},
		{ID: "late", AssigneeID: "e1", Status: model.TaskStatusNew, ParentID: "root", DueDate: date("2024-03-20"), Priority: prio(1)},
		{ID: "late-sub", AssigneeID: "e2", Status: model.TaskStatusInProgress, ParentID: "late"},
		{ID: "soon", AssigneeID: "e1", Status: model.TaskStatusNew, DueDate: date("2024-03-05")},
		{ID: "soon-sub", AssigneeID: "e3", Status: model.TaskStatusInProgress, ParentID: "soon"},
		{ID: "undated", Status: model.TaskStatusNew},
		{ID: "undated-sub", Status: model.TaskStatusInProgress, ParentID: "undated"},
		{ID: "idle", Status: model.TaskStatusNew, DueDate: date("2024-03-01")},
		{ID: "idle-sub", Status: model.TaskStatusDone, ParentID: "idle"},
		{ID: "done", Status: model.TaskStatusDone, DueDate: date("2024-03-01")},
		{ID: "done-sub", Status: model.TaskStatusInProgress, ParentID: "done"},
	}
}

func ids(items []model.ImportantTask) []string {
	r := []string{}
	for _, it := range items {
		r = append(r, it.Task.ID)
	}
	return r
}

var leastLoaded = []model.Recommendation{
	{EmployeeID: "e2", FullName: "Bob", Reason: model.ReasonLeastLoaded},
	{EmployeeID: "e3", FullName: "Carol", Reason: model.ReasonLeastLoaded},
}

func TestCompute(t *testing.T) {
	tests := map[string]struct {
		employees []model.Employee
		tasks     []model.Task
		expIDs    []string
		expRecs   map[string][]model.Recommendation
	}{
		"New tasks with a subtask in progress should be sorted by due date with undated last.": {
			employees: employees(),
			tasks:     tasks(),
			expIDs:    []string{"soon", "late", "undated"},
			expRecs: map[string][]model.Recommendation{
				"soon":    leastLoaded,
				"undated": leastLoaded,
				"late": append(append([]model.Recommendation{}, leastLoaded...),
					model.Recommendation{EmployeeID: "e1", FullName: "Alice", Reason: model.ReasonParentAssignee}),
			},
		},

		"A parent assignee above the threshold should not be recommended.": {
			employees: employees(),
			tasks: append(tasks(),
				model.Task{ID: "extra", AssigneeID: "e1", Status: model.TaskStatusNew},
			),
			expIDs: []string{"soon", "late", "undated"},
			expRecs: map[string][]model.Recommendation{
				"late": leastLoaded,
			},
		},

		"A least loaded parent assignee should be listed once.": {
			employees: employees(),
			tasks: []model.Task{
				{ID: "root", AssigneeID: "e3", Status: model.TaskStatusDone},
				{ID: "t1", Status: model.TaskStatusNew, ParentID: "root"},
				{ID: "t1-sub", Status: model.TaskStatusInProgress, ParentID: "t1"},
			},
			expIDs: []string{"t1"},
			expRecs: map[string][]model.Recommendation{
				"t1": {
					{EmployeeID: "e1", FullName: "Alice", Reason: model.ReasonLeastLoaded},
					{EmployeeID: "e2", FullName: "Bob", Reason: model.ReasonLeastLoaded},
					{EmployeeID: "e3", FullName: "Carol", Reason: model.ReasonLeastLoaded},
				},
			},
		},

		"An inactive parent assignee should not be recommended.": {
			employees: employees(),
			tasks: []model.Task{
				{ID: "root", AssigneeID: "e4", Status: model.TaskStatusDone},
				{ID: "t1", AssigneeID: "e1", Status: model.TaskStatusNew, ParentID: "root"},
				{ID: "t1-sub", AssigneeID: "e1", Status: model.TaskStatusInProgress, ParentID: "t1"},
			},
			expIDs: []string{"t1"},
			expRecs: map[string][]model.Recommendation{
				"t1": leastLoaded,
			},
		},

		"Equal due dates should put the highest priority first.": {
			employees: employees(),
			tasks: []model.Task{
				{ID: "low", Status: model.TaskStatusNew, DueDate: date("2024-03-05"), Priority: prio(1)},
				{ID: "none", Status: model.TaskStatusNew, DueDate: date("2024-03-05")},
				{ID: "high", Status: model.TaskStatusNew, DueDate: date("2024-03-05"), Priority: prio(5)},
				{ID: "s1", Status: model.TaskStatusInProgress, ParentID: "low"},
				{ID: "s2", Status: model.TaskStatusInProgress, ParentID: "none"},
				{ID: "s3", Status: model.TaskStatusInProgress, ParentID: "high"},
			},
			expIDs: []string{"high", "low", "none"},
		},

		"Without employees nobody should be recommended.": {
			tasks:  tasks(),
			expIDs: []string{"soon", "late", "undated"},
			expRecs: map[string][]model.Recommendation{
				"soon": {},
				"late": {},
			},
		},

		"Nothing should produce no tasks.": {
			employees: employees(),
			expIDs:    []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := important.Compute(test.employees, test.tasks)

			assert.Equal(t, test.expIDs, ids(got))
			for _, it := range got {
				if exp, ok := test.expRecs[it.Task.ID]; ok {
					assert.Equal(t, exp, it.Recommended, it.Task.ID)
				}
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		mock   func(m *backendmock.MockBackend)
		req    important.Request
		exp    []string
		expErr error
	}{
		"Every important task should be returned.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListEmployees", mock.Anything).Once().Return(employees(), nil)
				m.On("ListTasks", mock.Anything, backend.TaskFilter{Page: 1}).Once().Return(&backend.TaskPage{Tasks: tasks()[:5], NextPage: 2}, nil)
				m.On("ListTasks", mock.Anything, backend.TaskFilter{Page: 2}).Once().Return(&backend.TaskPage{Tasks: tasks()[5:]}, nil)
			},
			exp: []string{"soon", "late", "undated"},
		},

		"A limit should keep the most urgent tasks.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListEmployees", mock.Anything).Once().Return(employees(), nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(&backend.TaskPage{Tasks: tasks()}, nil)
			},
			req: important.Request{Limit: 2},
			exp: []string{"soon", "late"},
		},

		"A negative limit should fail without calling the backend.": {
			mock:   func(m *backendmock.MockBackend) {},
			req:    important.Request{Limit: -1},
			expErr: model.ErrNotValid,
		},

		"A backend failure should fail.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListEmployees", mock.Anything).Once().Return(employees(), nil)
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(nil, &model.BackendError{StatusCode: 502})
			},
			expErr: model.ErrBackend,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := &backendmock.MockBackend{}
			test.mock(m)

			svc, err := important.NewService(important.ServiceConfig{Backend: m})
			require.NoError(t, err)

			got, err := svc.Run(context.TODO(), test.req)

			m.AssertExpectations(t)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, ids(got))
		})
	}
}
