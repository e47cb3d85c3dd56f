package model

// Workload is the task load of a single assignee.
type Workload struct {
	AssigneeID string
	Assignee   string
	Total      int
	// Active counts new and in progress tasks.
	Active  int
	Overdue int
	// Critical counts new tasks with at least one child in progress.
	Critical int
}

// WorkloadDetail is the workload of one employee along with the tasks behind it.
type WorkloadDetail struct {
	Workload
	Tasks []Task
}

// Recommendation reasons.
const (
	ReasonLeastLoaded    = "least_loaded"
	ReasonParentAssignee = "parent_assignee_within_threshold"
)

// Recommendation is an employee suggested to pick up an important task.
type Recommendation struct {
	EmployeeID string
	FullName   string
	Reason     string
}

// ImportantTask is a new task already blocking in progress subtasks.
type ImportantTask struct {
	Task        Task
	Recommended []Recommendation
}
