package model

// Role is the role of the authenticated user.
type Role string

const (
	// RoleManager can mutate tasks and dependencies.
	RoleManager Role = "manager"
	// RoleEmployee is read only on the timeline.
	RoleEmployee Role = "employee"
)

// User is the authenticated identity.
type User struct {
	ID       string
	Username string
	Email    string
	Groups   []string
}

// Session is the explicit session context handed to the entry points.
// CanEdit is computed once by the identity collaborator.
type Session struct {
	User    User
	Role    Role
	CanEdit bool
}

// GanttData is the backend's pre-joined view used for rendering.
type GanttData struct {
	Tasks        []Task
	Dependencies []Dependency
}
