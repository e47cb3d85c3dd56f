package tasklist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/app/tasklist"
	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/backend/backendmock"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config tasklist.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: tasklist.ServiceConfig{Backend: &backendmock.MockBackend{}, Logger: log.Noop},
		},
		"missing backend should fail": {
			config: tasklist.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: tasklist.ServiceConfig{Backend: &backendmock.MockBackend{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := tasklist.NewService(test.config)
			if test.expErr {
				require.Error(t, err)
				require.Nil(t, svc)
			} else {
				require.NoError(t, err)
				require.NotNil(t, svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	t1 := model.Task{ID: "t1", Status: model.TaskStatusNew, DueDate: date("2024-03-01")}
	t2 := model.Task{ID: "t2", Status: model.TaskStatusDone, DueDate: date("2024-03-01")}
	t3 := model.Task{ID: "t3", Status: model.TaskStatusInProgress, DueDate: date("2024-04-01")}

	tests := map[string]struct {
		mock    func(m *backendmock.MockBackend)
		req     tasklist.Request
		expResp *tasklist.Response
		expErr  error
	}{
		"A single page should be listed with its next page.": {
			mock: func(m *backendmock.MockBackend) {
				filter := backend.TaskFilter{Status: model.TaskStatusNew, Query: "design"}
				m.On("ListTasks", mock.Anything, filter).Once().Return(&backend.TaskPage{Tasks: []model.Task{t1}, Total: 30, NextPage: 2}, nil)
			},
			req:     tasklist.Request{Filter: backend.TaskFilter{Status: model.TaskStatusNew, Query: "design"}},
			expResp: &tasklist.Response{Tasks: []model.Task{t1}, NextPage: 2},
		},

		"All should walk every page.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListTasks", mock.Anything, backend.TaskFilter{Page: 1}).Once().Return(&backend.TaskPage{Tasks: []model.Task{t1, t2}, NextPage: 2}, nil)
				m.On("ListTasks", mock.Anything, backend.TaskFilter{Page: 2}).Once().Return(&backend.TaskPage{Tasks: []model.Task{t3}}, nil)
			},
			req:     tasklist.Request{All: true},
			expResp: &tasklist.Response{Tasks: []model.Task{t1, t2, t3}},
		},

		"Overdue should keep only the open tasks past their due date.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(&backend.TaskPage{Tasks: []model.Task{t1, t2, t3}}, nil)
			},
			req:     tasklist.Request{All: true, OverdueOf: date("2024-03-10")},
			expResp: &tasklist.Response{Tasks: []model.Task{t1}},
		},

		"An unknown status should fail without calling the backend.": {
			mock:   func(m *backendmock.MockBackend) {},
			req:    tasklist.Request{Filter: backend.TaskFilter{Status: "blocked"}},
			expErr: model.ErrNotValid,
		},

		"A backend failure should fail.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListTasks", mock.Anything, mock.Anything).Once().Return(nil, &model.BackendError{StatusCode: 500})
			},
			expErr: model.ErrBackend,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := &backendmock.MockBackend{}
			test.mock(m)

			svc, err := tasklist.NewService(tasklist.ServiceConfig{Backend: m})
			require.NoError(t, err)

			resp, err := svc.Run(context.TODO(), test.req)

			m.AssertExpectations(t)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expResp, resp)
		})
	}
}
