package printer

import (
	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/model"
)

// Printer knows how to print timeline information in different formats.
type Printer interface {
	PrintGantt(chart gantt.Chart) error
	PrintTasks(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintDependencies(deps []model.Dependency) error
	PrintWorkload(rows []model.Workload) error
	PrintWorkloadDetail(detail model.WorkloadDetail) error
	PrintImportant(items []model.ImportantTask) error
	PrintSnapshots(snapshots []model.Snapshot) error
	PrintSession(session model.Session) error
	PrintMessage(msg string) error
}
