package gantt

import "github.com/taskline/taskline/internal/model"

// Unassigned is the group key for tasks without assignee.
const Unassigned = "Unassigned"

// Group is the tasks of a single assignee.
type Group struct {
	Assignee string
	Tasks    []model.Task
}

// GroupByAssignee partitions tasks by assignee display name. Groups are ordered by
// first appearance and keep the input order of their tasks.
func GroupByAssignee(tasks []model.Task) []Group {
	index := map[string]int{}
	var groups []Group
	for _, t := range tasks {
		key := t.Assignee
		if key == "" {
			key = Unassigned
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Assignee: key})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	return groups
}
