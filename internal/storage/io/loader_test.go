package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/model"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func TestFixtureYAMLRepository_GetFixture(t *testing.T) {
	priority := 3

	tests := map[string]struct {
		data       string
		expFixture *Fixture
		expErr     bool
	}{
		"Valid fixture should load successfully": {
			data: `
employees:
  - id: e1
    full_name: Alice
    position: Developer
  - id: e2
    full_name: Bob
    active: false
tasks:
  - id: t1
    title: Design
    start_date: 2024-01-10
    end_date: 2024-01-20
    due_date: 2024-01-20
    status: in_progress
    assignee: e1
    priority: 3
  - id: t2
    title: Build
    parent: t1
dependencies:
  - id: d1
    predecessor: t1
    successor: t2
    lag_days: 2
`,
			expFixture: &Fixture{
				Employees: []model.Employee{
					{ID: "e1", FullName: "Alice", Position: "Developer", Active: true},
					{ID: "e2", FullName: "Bob", Active: false},
				},
				Tasks: []model.Task{
					{
						ID: "t1", Title: "Design",
						StartDate: date("2024-01-10"), EndDate: date("2024-01-20"), DueDate: date("2024-01-20"),
						Status: model.TaskStatusInProgress, AssigneeID: "e1", Assignee: "Alice", Priority: &priority,
					},
					{ID: "t2", Title: "Build", Status: model.TaskStatusNew, ParentID: "t1"},
				},
				Dependencies: []model.Dependency{
					{ID: "d1", PredecessorID: "t1", SuccessorID: "t2", Type: model.DependencyFinishToStart, LagDays: 2},
				},
			},
		},
		"Task with inverted dates should fail": {
			data: `
tasks:
  - id: t1
    title: Design
    start_date: 2024-01-20
    end_date: 2024-01-10
`,
			expErr: true,
		},
		"Task with unknown status should fail": {
			data: `
tasks:
  - id: t1
    title: Design
    status: blocked
`,
			expErr: true,
		},
		"Task with unknown assignee should fail": {
			data: `
tasks:
  - id: t1
    title: Design
    assignee: ghost
`,
			expErr: true,
		},
		"Self dependency should fail": {
			data: `
tasks:
  - id: t1
    title: Design
dependencies:
  - predecessor: t1
    successor: t1
`,
			expErr: true,
		},
		"Dependency on an unknown task should fail": {
			data: `
tasks:
  - id: t1
    title: Design
dependencies:
  - predecessor: t1
    successor: t9
`,
			expErr: true,
		},
		"Invalid YAML should fail": {
			data:   "tasks: [",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewFixtureYAMLRepository(fstest.MapFS{
				"fixture.yaml": &fstest.MapFile{Data: []byte(test.data)},
			})
			got, err := repo.GetFixture(context.Background(), "fixture.yaml")

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expFixture, got)
		})
	}
}

func TestFixtureYAMLRepository_MissingFile(t *testing.T) {
	repo := NewFixtureYAMLRepository(fstest.MapFS{})
	_, err := repo.GetFixture(context.Background(), "missing.yaml")
	assert.Error(t, err)
}
