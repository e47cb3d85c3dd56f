package gantt

// Selection is the single selected task of a chart. The zero value has nothing selected.
type Selection struct {
	taskID string
}

// Toggle selects the task, or deselects it when it was already selected.
func (s *Selection) Toggle(taskID string) {
	if s.taskID == taskID {
		s.taskID = ""
		return
	}
	s.taskID = taskID
}

// Clear deselects the selected task.
func (s *Selection) Clear() { s.taskID = "" }

// Selected returns the selected task ID.
func (s Selection) Selected() (string, bool) {
	return s.taskID, s.taskID != ""
}

// IsSelected reports whether taskID is the selected task.
func (s Selection) IsSelected(taskID string) bool {
	return s.taskID != "" && s.taskID == taskID
}
