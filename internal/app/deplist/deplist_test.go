package deplist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/app/deplist"
	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/backend/backendmock"
	"github.com/taskline/taskline/internal/model"
)

func TestService_Run(t *testing.T) {
	d1 := model.Dependency{ID: "d1", PredecessorID: "t1", SuccessorID: "t2"}
	d2 := model.Dependency{ID: "d2", PredecessorID: "t2", SuccessorID: "t3"}

	tests := map[string]struct {
		mock    func(m *backendmock.MockBackend)
		req     deplist.Request
		expDeps []model.Dependency
		expErr  error
	}{
		"Everything should be listed without filters.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListDependencies", mock.Anything, backend.DependencyFilter{}).Once().Return([]model.Dependency{d1, d2}, nil)
			},
			expDeps: []model.Dependency{d1, d2},
		},

		"A predecessor filter should be sent to the backend.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListDependencies", mock.Anything, backend.DependencyFilter{PredecessorID: "t1"}).Once().Return([]model.Dependency{d1}, nil)
			},
			req:     deplist.Request{PredecessorID: "t1"},
			expDeps: []model.Dependency{d1},
		},

		"A task should list its incoming then outgoing dependencies.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListDependencies", mock.Anything, backend.DependencyFilter{SuccessorID: "t2"}).Once().Return([]model.Dependency{d1}, nil)
				m.On("ListDependencies", mock.Anything, backend.DependencyFilter{PredecessorID: "t2"}).Once().Return([]model.Dependency{d2}, nil)
			},
			req:     deplist.Request{TaskID: "t2"},
			expDeps: []model.Dependency{d1, d2},
		},

		"A task combined with a side filter should fail.": {
			mock:   func(m *backendmock.MockBackend) {},
			req:    deplist.Request{TaskID: "t2", SuccessorID: "t3"},
			expErr: model.ErrNotValid,
		},

		"A backend failure should fail.": {
			mock: func(m *backendmock.MockBackend) {
				m.On("ListDependencies", mock.Anything, mock.Anything).Once().Return(nil, &model.BackendError{StatusCode: 500})
			},
			expErr: model.ErrBackend,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := &backendmock.MockBackend{}
			test.mock(m)

			svc, err := deplist.NewService(deplist.ServiceConfig{Backend: m})
			require.NoError(t, err)

			got, err := svc.Run(context.TODO(), test.req)

			m.AssertExpectations(t)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expDeps, got)
		})
	}
}
