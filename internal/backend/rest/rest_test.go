package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/backend/rest"
	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

// recorded is a request seen by the fake API.
type recorded struct {
	Method    string
	Path      string
	Query     string
	Body      map[string]any
	RequestID string
}

func newServer(t *testing.T, status int, response string) (*rest.Client, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.RequestID = r.Header.Get(rest.RequestIDHeader)
		b, _ := io.ReadAll(r.Body)
		if len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	c, err := rest.NewClient(rest.ClientConfig{BaseURL: srv.URL + "/api/", HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c, rec
}

func TestNewClientConfig(t *testing.T) {
	tests := map[string]struct {
		baseURL string
		expErr  bool
	}{
		"A missing base URL should fail.":   {baseURL: "", expErr: true},
		"A relative base URL should fail.":  {baseURL: "/api", expErr: true},
		"An absolute base URL should work.": {baseURL: "http://localhost:8000/api"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := rest.NewClient(rest.ClientConfig{BaseURL: test.baseURL})
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientListTasks(t *testing.T) {
	tests := map[string]struct {
		filter   backend.TaskFilter
		response string
		expQuery string
		expTasks []model.Task
		expTotal int
		expNext  int
	}{
		"A paginated listing should decode the envelope and the next page.": {
			filter:   backend.TaskFilter{Status: model.TaskStatusInProgress},
			response: `{"count": 3, "next": "http://x/api/tasks/?page=2&status=in_progress", "previous": null, "results": [
				{"id": "1", "title": "Design", "status": "in_progress", "due_date": "2024-01-20", "start_date": "2024-01-10", "end_date": null,
				 "assignee": {"id": "e1", "full_name": "Alice", "is_active": true}}]}`,
			expQuery: "status=in_progress",
			expTasks: []model.Task{
				{ID: "1", Title: "Design", Status: model.TaskStatusInProgress, DueDate: date("2024-01-20"), StartDate: date("2024-01-10"), AssigneeID: "e1", Assignee: "Alice"},
			},
			expTotal: 3,
			expNext:  2,
		},
		"A plain array listing should be accepted.": {
			filter:   backend.TaskFilter{RootOnly: true, Page: 2},
			response: `[{"id": "2", "title": "Build", "status": "new", "parent": null, "assignee": null}]`,
			expQuery: "page=2&parent_isnull=true",
			expTasks: []model.Task{{ID: "2", Title: "Build", Status: model.TaskStatusNew}},
			expTotal: 1,
		},
		"Filters should be sent as query parameters.": {
			filter: backend.TaskFilter{
				AssigneeID: "e1",
				DueBefore:  date("2024-02-01"),
				DueAfter:   date("2024-01-01"),
				Query:      "doc",
			},
			response: `{"count": 0, "next": null, "results": []}`,
			expQuery: "assignee=e1&due_after=2024-01-01&due_before=2024-02-01&q=doc",
			expTasks: []model.Task{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			c, rec := newServer(t, http.StatusOK, test.response)
			page, err := c.ListTasks(context.Background(), test.filter)
			require.NoError(err)

			assert.Equal(http.MethodGet, rec.Method)
			assert.Equal("/api/tasks/", rec.Path)
			assert.Equal(test.expQuery, rec.Query)
			assert.NotEmpty(rec.RequestID)
			assert.Equal(test.expTasks, page.Tasks)
			assert.Equal(test.expTotal, page.Total)
			assert.Equal(test.expNext, page.NextPage)
		})
	}
}

func TestClientUpdateTask(t *testing.T) {
	title := "Renamed"
	done := model.TaskStatusDone

	tests := map[string]struct {
		patch   backend.TaskPatch
		expBody map[string]any
	}{
		"Unset fields should be omitted.": {
			patch:   backend.TaskPatch{Title: &title},
			expBody: map[string]any{"title": "Renamed"},
		},
		"Cleared dates should be sent as null.": {
			patch: backend.TaskPatch{
				Status:    &done,
				StartDate: backend.SetDate(nil),
				EndDate:   backend.SetDate(date("2024-02-10")),
			},
			expBody: map[string]any{"status": "done", "start_date": nil, "end_date": "2024-02-10"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			c, rec := newServer(t, http.StatusOK, `{"id": "7", "title": "Renamed", "status": "done", "due_date": "2024-03-01"}`)
			got, err := c.UpdateTask(context.Background(), "7", test.patch)
			require.NoError(err)

			assert.Equal(http.MethodPatch, rec.Method)
			assert.Equal("/api/tasks/7/", rec.Path)
			assert.Equal(test.expBody, rec.Body)
			assert.Equal("7", got.ID)
			assert.Equal(date("2024-03-01"), got.DueDate)
		})
	}
}

func TestClientCreateTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, rec := newServer(t, http.StatusCreated, `{"id": "9", "title": "Docs", "status": "new", "due_date": "2024-03-08", "start_date": "2024-03-01"}`)
	got, err := c.CreateTask(context.Background(), backend.TaskCreate{
		Title:      "Docs",
		DueDate:    model.MustParseDate("2024-03-08"),
		StartDate:  date("2024-03-01"),
		AssigneeID: "e2",
	})
	require.NoError(err)

	assert.Equal(http.MethodPost, rec.Method)
	assert.Equal("/api/tasks/", rec.Path)
	assert.Equal("Docs", rec.Body["title"])
	assert.Equal("2024-03-08", rec.Body["due_date"])
	assert.Equal("2024-03-01", rec.Body["start_date"])
	assert.Nil(rec.Body["end_date"])
	assert.Equal("e2", rec.Body["assignee_id"])
	assert.Equal("9", got.ID)
}

func TestClientCreateTaskWithoutDueDate(t *testing.T) {
	c, rec := newServer(t, http.StatusCreated, `{}`)
	_, err := c.CreateTask(context.Background(), backend.TaskCreate{Title: "Docs"})

	assert.ErrorIs(t, err, model.ErrNotValid)
	assert.Empty(t, rec.Method)
}

func TestClientErrors(t *testing.T) {
	tests := map[string]struct {
		status     int
		response   string
		expMessage string
		expErrs    []error
	}{
		"A detail body should be used as the message.": {
			status:     http.StatusForbidden,
			response:   `{"detail": "You do not have permission to perform this action."}`,
			expMessage: "You do not have permission to perform this action.",
			expErrs:    []error{model.ErrBackend},
		},
		"An error body should be used as the message.": {
			status:     http.StatusBadRequest,
			response:   `{"error": "Cannot depend on itself"}`,
			expMessage: "Cannot depend on itself",
			expErrs:    []error{model.ErrBackend},
		},
		"Field errors should be joined in key order.": {
			status:     http.StatusBadRequest,
			response:   `{"title": ["This field is required."], "due_date": ["Invalid date."]}`,
			expMessage: "due_date: Invalid date.; title: This field is required.",
			expErrs:    []error{model.ErrBackend},
		},
		"A not found status should match the not found error.": {
			status:     http.StatusNotFound,
			response:   `{"detail": "Not found."}`,
			expMessage: "Not found.",
			expErrs:    []error{model.ErrBackend, model.ErrNotFound},
		},
		"An HTML body should fall back to the status text.": {
			status:     http.StatusInternalServerError,
			response:   `<html>boom</html>`,
			expMessage: "Internal Server Error",
			expErrs:    []error{model.ErrBackend},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			c, _ := newServer(t, test.status, test.response)
			_, err := c.GetTask(context.Background(), "1")

			var berr *model.BackendError
			if assert.True(errors.As(err, &berr)) {
				assert.Equal(test.status, berr.StatusCode)
				assert.Equal(test.expMessage, berr.Message)
			}
			for _, e := range test.expErrs {
				assert.ErrorIs(err, e)
			}
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := rest.NewClient(rest.ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.ListEmployees(context.Background())
	var berr *model.BackendError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, 0, berr.StatusCode)
}

func TestClientDependencies(t *testing.T) {
	t.Run("Creating should default the type.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		c, rec := newServer(t, http.StatusCreated, `{"id": "d1", "predecessor": "1", "successor": "2", "dependency_type": "finish_to_start", "lag_days": 2}`)
		got, err := c.CreateDependency(context.Background(), backend.DependencyCreate{PredecessorID: "1", SuccessorID: "2", LagDays: 2})
		require.NoError(err)

		assert.Equal("/api/task-dependencies/", rec.Path)
		assert.Equal(map[string]any{"predecessor": "1", "successor": "2", "dependency_type": "finish_to_start", "lag_days": float64(2)}, rec.Body)
		assert.Equal(&model.Dependency{ID: "d1", PredecessorID: "1", SuccessorID: "2", Type: model.DependencyFinishToStart, LagDays: 2}, got)
	})

	t.Run("Listing should filter by task.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		c, rec := newServer(t, http.StatusOK, `[{"id": "d1", "predecessor": "1", "successor": "2", "predecessor_title": "A", "successor_title": "B", "dependency_type": "start_to_start", "lag_days": 0}]`)
		got, err := c.ListDependencies(context.Background(), backend.DependencyFilter{SuccessorID: "2"})
		require.NoError(err)

		assert.Equal("successor_id=2", rec.Query)
		assert.Equal([]model.Dependency{{ID: "d1", PredecessorID: "1", SuccessorID: "2", PredecessorTitle: "A", SuccessorTitle: "B", Type: model.DependencyStartToStart}}, got)
	})

	t.Run("Deleting should hit the dependency path.", func(t *testing.T) {
		c, rec := newServer(t, http.StatusNoContent, ``)
		err := c.DeleteDependency(context.Background(), "d1")
		require.NoError(t, err)

		assert.Equal(t, http.MethodDelete, rec.Method)
		assert.Equal(t, "/api/task-dependencies/d1/", rec.Path)
	})
}

func TestClientGanttData(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, rec := newServer(t, http.StatusOK, `{
		"tasks": [
			{"id": "1", "text": "Design", "start_date": "2024-01-10", "end_date": "2024-01-20", "duration": 10, "progress": 50, "assignee": "Alice", "status": "in_progress", "parent": null},
			{"id": "2", "text": "Build", "start_date": "2024-02-01", "end_date": "2024-02-05", "duration": 4, "progress": 0, "assignee": "Не назначен", "status": "new", "parent": "1"}
		],
		"links": [{"id": "d1", "source": "1", "target": "2", "type": "finish_to_start", "lag": 1}]
	}`)
	got, err := c.GanttData(context.Background())
	require.NoError(err)

	assert.Equal("/api/tasks/gantt_data/", rec.Path)
	require.Len(got.Tasks, 2)
	assert.Equal("Alice", got.Tasks[0].Assignee)
	assert.Equal(50, *got.Tasks[0].Progress)
	assert.Equal("", got.Tasks[1].Assignee)
	assert.Equal("1", got.Tasks[1].ParentID)
	assert.Equal([]model.Dependency{{
		ID: "d1", PredecessorID: "1", SuccessorID: "2", Type: model.DependencyFinishToStart, LagDays: 1,
		PredecessorTitle: "Design", SuccessorTitle: "Build",
	}}, got.Dependencies)
}

func TestClientListEmployees(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"count": 3, "next": null, "results": [
		{"id": "e2", "full_name": "Bob", "is_active": true},
		{"id": "e3", "full_name": "Carol", "is_active": false},
		{"id": "e1", "full_name": "Alice", "is_active": true}
	]}`)
	got, err := c.ListEmployees(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []model.Employee{
		{ID: "e1", FullName: "Alice", Active: true},
		{ID: "e2", FullName: "Bob", Active: true},
	}, got)
}
