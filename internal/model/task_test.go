package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func TestTaskValidate(t *testing.T) {
	tests := map[string]struct {
		task  model.Task
		expIs error
	}{
		"A task with a title and ordered dates should be valid.": {
			task: model.Task{Title: "a", StartDate: date("2024-01-10"), EndDate: date("2024-01-20")},
		},
		"A single day task should be valid.": {
			task: model.Task{Title: "a", StartDate: date("2024-01-10"), EndDate: date("2024-01-10")},
		},
		"A task without title should not be valid.": {
			task:  model.Task{Title: "  "},
			expIs: model.ErrNotValid,
		},
		"A task ending before starting should be an invalid range.": {
			task:  model.Task{Title: "a", StartDate: date("2024-01-10"), EndDate: date("2024-01-09")},
			expIs: model.ErrInvalidRange,
		},
		"A task with an unknown status should not be valid.": {
			task:  model.Task{Title: "a", Status: "blocked"},
			expIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.task.Validate()
			if test.expIs != nil {
				assert.ErrorIs(t, err, test.expIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskOverdue(t *testing.T) {
	today := model.MustParseDate("2024-03-01")

	assert.True(t, model.Task{Status: model.TaskStatusNew, DueDate: date("2024-02-28")}.Overdue(today))
	assert.False(t, model.Task{Status: model.TaskStatusDone, DueDate: date("2024-02-28")}.Overdue(today))
	assert.False(t, model.Task{Status: model.TaskStatusInProgress, DueDate: date("2024-03-01")}.Overdue(today))
	assert.False(t, model.Task{Status: model.TaskStatusNew}.Overdue(today))
}

func TestDependencyValidate(t *testing.T) {
	tests := map[string]struct {
		dep   model.Dependency
		expIs error
	}{
		"A regular dependency should be valid.": {
			dep: model.Dependency{PredecessorID: "a", SuccessorID: "b", Type: model.DependencyFinishToStart},
		},
		"A self dependency should fail.": {
			dep:   model.Dependency{PredecessorID: "a", SuccessorID: "a", Type: model.DependencyFinishToStart},
			expIs: model.ErrSelfDependency,
		},
		"A missing successor should fail.": {
			dep:   model.Dependency{PredecessorID: "a", Type: model.DependencyFinishToStart},
			expIs: model.ErrNotValid,
		},
		"An unknown type should fail.": {
			dep:   model.Dependency{PredecessorID: "a", SuccessorID: "b", Type: "blocks"},
			expIs: model.ErrNotValid,
		},
		"A negative lag should fail.": {
			dep:   model.Dependency{PredecessorID: "a", SuccessorID: "b", Type: model.DependencyStartToStart, LagDays: -1},
			expIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.dep.Validate()
			if test.expIs != nil {
				assert.ErrorIs(t, err, test.expIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackendErrorMatching(t *testing.T) {
	err := &model.BackendError{StatusCode: 404, Message: "missing"}
	assert.ErrorIs(t, err, model.ErrBackend)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.False(t, err.Unauthorized())
	assert.True(t, (&model.BackendError{StatusCode: 401}).Unauthorized())
}
