package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/model"
)

func TestNewSession(t *testing.T) {
	tests := map[string]struct {
		groups  []string
		expRole model.Role
		expEdit bool
	}{
		"A manager should be able to edit.": {
			groups:  []string{"staff", "manager"},
			expRole: model.RoleManager,
			expEdit: true,
		},
		"An employee should be read only.": {
			groups:  []string{"employee"},
			expRole: model.RoleEmployee,
		},
		"A user without groups should be read only.": {
			expRole: model.RoleEmployee,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			s := auth.NewSession(model.User{ID: "1", Groups: test.groups})
			assert.Equal(t, test.expRole, s.Role)
			assert.Equal(t, test.expEdit, s.CanEdit)
		})
	}
}
