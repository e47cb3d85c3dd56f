package gantt

import "github.com/taskline/taskline/internal/model"

// Color is a "#RRGGBB" color.
type Color string

const (
	ColorGray  Color = "#6B7280"
	ColorBlue  Color = "#3B82F6"
	ColorGreen Color = "#10B981"
	ColorRed   Color = "#EF4444"
)

// StatusColor returns the bar color of a status.
func StatusColor(s model.TaskStatus) Color {
	switch s {
	case model.TaskStatusInProgress:
		return ColorBlue
	case model.TaskStatusDone:
		return ColorGreen
	case model.TaskStatusCancelled:
		return ColorRed
	default:
		return ColorGray
	}
}

// ImplicitProgress is the progress implied by a status.
func ImplicitProgress(s model.TaskStatus) int {
	switch s {
	case model.TaskStatusDone:
		return 100
	case model.TaskStatusInProgress:
		return 50
	default:
		return 0
	}
}

// Progress returns the explicit progress of the task or the one implied by its status.
func Progress(t model.Task) int {
	if t.Progress != nil {
		return *t.Progress
	}
	return ImplicitProgress(t.Status)
}

// LegendEntry explains a bar color.
type LegendEntry struct {
	Status model.TaskStatus
	Color  Color
}

// Legend returns the legend in status display order.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		entries = append(entries, LegendEntry{Status: s, Color: StatusColor(s)})
	}
	return entries
}
