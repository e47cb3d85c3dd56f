package auth

import (
	"slices"

	"github.com/taskline/taskline/internal/model"
)

// ManagerGroup is the backend group that grants edit capability.
const ManagerGroup = "manager"

// RoleOf returns the role of a user from its groups.
func RoleOf(u model.User) model.Role {
	if slices.Contains(u.Groups, ManagerGroup) {
		return model.RoleManager
	}
	return model.RoleEmployee
}

// NewSession computes the session context of an authenticated user.
func NewSession(u model.User) model.Session {
	role := RoleOf(u)
	return model.Session{
		User:    u,
		Role:    role,
		CanEdit: role == model.RoleManager,
	}
}
