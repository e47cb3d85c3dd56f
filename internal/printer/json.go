package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/model"
)

// JSONPrinter prints timeline information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type taskItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      model.TaskStatus `json:"status"`
	AssigneeID  string           `json:"assignee_id,omitempty"`
	Assignee    string           `json:"assignee,omitempty"`
	StartDate   *model.Date      `json:"start_date"`
	EndDate     *model.Date      `json:"end_date"`
	DueDate     *model.Date      `json:"due_date"`
	Priority    *int             `json:"priority,omitempty"`
	ParentID    string           `json:"parent_id,omitempty"`
	Progress    int              `json:"progress"`
}

type dependencyItem struct {
	ID               string               `json:"id"`
	PredecessorID    string               `json:"predecessor_id"`
	SuccessorID      string               `json:"successor_id"`
	Type             model.DependencyType `json:"type"`
	LagDays          int                  `json:"lag_days"`
	PredecessorTitle string               `json:"predecessor_title,omitempty"`
	SuccessorTitle   string               `json:"successor_title,omitempty"`
}

type ganttOutput struct {
	Empty        bool             `json:"empty"`
	Min          *model.Date      `json:"min,omitempty"`
	Max          *model.Date      `json:"max,omitempty"`
	Months       []model.Date     `json:"months"`
	Header       []monthItem      `json:"header"`
	Rows         []rowItem        `json:"rows"`
	Legend       []legendItem     `json:"legend"`
	Dependencies []dependencyItem `json:"dependencies"`
	CanEdit      bool             `json:"can_edit"`
}

type monthItem struct {
	Month        model.Date `json:"month"`
	LeftPercent  float64    `json:"left_percent"`
	WidthPercent float64    `json:"width_percent"`
}

type rowItem struct {
	Assignee string     `json:"assignee"`
	Bars     []barItem  `json:"bars"`
	Undated  []taskItem `json:"undated"`
}

type barItem struct {
	Task         taskItem    `json:"task"`
	LeftPercent  float64     `json:"left_percent"`
	WidthPercent float64     `json:"width_percent"`
	Color        gantt.Color `json:"color"`
	Progress     int         `json:"progress"`
	Selected     bool        `json:"selected"`
}

type legendItem struct {
	Status model.TaskStatus `json:"status"`
	Color  gantt.Color      `json:"color"`
}

type workloadItem struct {
	AssigneeID string `json:"assignee_id,omitempty"`
	Assignee   string `json:"assignee"`
	Total      int    `json:"total"`
	Active     int    `json:"active"`
	Overdue    int    `json:"overdue"`
	Critical   int    `json:"critical"`
}

type workloadDetailOutput struct {
	workloadItem
	Tasks []taskItem `json:"tasks"`
}

type recommendationItem struct {
	EmployeeID string `json:"id"`
	FullName   string `json:"full_name"`
	Reason     string `json:"reason"`
}

type importantItem struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	DueDate     *model.Date          `json:"due_date"`
	Priority    *int                 `json:"priority,omitempty"`
	Recommended []recommendationItem `json:"recommended_employees"`
}

type snapshotItem struct {
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
	Tasks        int       `json:"tasks"`
	Dependencies int       `json:"dependencies"`
}

type sessionOutput struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email,omitempty"`
	Groups   []string   `json:"groups"`
	Role     model.Role `json:"role"`
	CanEdit  bool       `json:"can_edit"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintGantt prints the renderable chart in JSON format.
func (j *JSONPrinter) PrintGantt(chart gantt.Chart) error {
	output := ganttOutput{
		Empty:        chart.Empty,
		Months:       []model.Date{},
		Header:       []monthItem{},
		Rows:         []rowItem{},
		Legend:       []legendItem{},
		Dependencies: toDependencyItems(chart.Dependencies),
		CanEdit:      chart.CanEdit,
	}

	if !chart.Empty {
		output.Min = model.DatePtr(chart.Range.Min)
		output.Max = model.DatePtr(chart.Range.Max)
		output.Months = append(output.Months, chart.Range.Months...)
	}
	for _, h := range chart.Header {
		output.Header = append(output.Header, monthItem{Month: h.Month, LeftPercent: h.LeftPercent, WidthPercent: h.WidthPercent})
	}
	for _, r := range chart.Rows {
		row := rowItem{Assignee: r.Assignee, Bars: []barItem{}, Undated: toTaskItems(r.Undated)}
		for _, b := range r.Bars {
			row.Bars = append(row.Bars, barItem{
				Task:         toTaskItem(b.Task),
				LeftPercent:  b.Position.LeftPercent,
				WidthPercent: b.Position.WidthPercent,
				Color:        b.Color,
				Progress:     b.Progress,
				Selected:     b.Selected,
			})
		}
		output.Rows = append(output.Rows, row)
	}
	for _, l := range chart.Legend {
		output.Legend = append(output.Legend, legendItem{Status: l.Status, Color: l.Color})
	}

	return j.encode(output)
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	return j.encode(toTaskItems(tasks))
}

// PrintTask prints a task in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	return j.encode(toTaskItem(task))
}

// PrintDependencies prints dependencies in JSON format.
func (j *JSONPrinter) PrintDependencies(deps []model.Dependency) error {
	return j.encode(toDependencyItems(deps))
}

// PrintWorkload prints the per assignee workload in JSON format.
func (j *JSONPrinter) PrintWorkload(rows []model.Workload) error {
	items := make([]workloadItem, len(rows))
	for i, w := range rows {
		items[i] = workloadItem{
			AssigneeID: w.AssigneeID,
			Assignee:   nameOr(w.Assignee, gantt.Unassigned),
			Total:      w.Total,
			Active:     w.Active,
			Overdue:    w.Overdue,
			Critical:   w.Critical,
		}
	}
	return j.encode(items)
}

// PrintWorkloadDetail prints the workload of one employee in JSON format.
func (j *JSONPrinter) PrintWorkloadDetail(d model.WorkloadDetail) error {
	return j.encode(workloadDetailOutput{
		workloadItem: workloadItem{
			AssigneeID: d.AssigneeID,
			Assignee:   nameOr(d.Assignee, d.AssigneeID),
			Total:      d.Total,
			Active:     d.Active,
			Overdue:    d.Overdue,
			Critical:   d.Critical,
		},
		Tasks: toTaskItems(d.Tasks),
	})
}

// PrintImportant prints the important tasks in JSON format.
func (j *JSONPrinter) PrintImportant(items []model.ImportantTask) error {
	out := make([]importantItem, len(items))
	for i, it := range items {
		recs := make([]recommendationItem, len(it.Recommended))
		for k, r := range it.Recommended {
			recs[k] = recommendationItem{EmployeeID: r.EmployeeID, FullName: r.FullName, Reason: r.Reason}
		}
		out[i] = importantItem{
			ID:          it.Task.ID,
			Title:       it.Task.Title,
			DueDate:     it.Task.DueDate,
			Priority:    it.Task.Priority,
			Recommended: recs,
		}
	}
	return j.encode(out)
}

// PrintSnapshots prints the cached snapshots in JSON format without their tasks.
func (j *JSONPrinter) PrintSnapshots(snapshots []model.Snapshot) error {
	items := make([]snapshotItem, len(snapshots))
	for i, s := range snapshots {
		items[i] = snapshotItem{
			Source:       s.Source,
			FetchedAt:    s.FetchedAt.UTC(),
			Tasks:        len(s.Tasks),
			Dependencies: len(s.Dependencies),
		}
	}
	return j.encode(items)
}

// PrintSession prints the logged in identity in JSON format.
func (j *JSONPrinter) PrintSession(session model.Session) error {
	groups := session.User.Groups
	if groups == nil {
		groups = []string{}
	}
	return j.encode(sessionOutput{
		ID:       session.User.ID,
		Username: session.User.Username,
		Email:    session.User.Email,
		Groups:   groups,
		Role:     session.Role,
		CanEdit:  session.CanEdit,
	})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toTaskItem(t model.Task) taskItem {
	return taskItem{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		Assignee:    t.Assignee,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		ParentID:    t.ParentID,
		Progress:    gantt.Progress(t),
	}
}

func toTaskItems(tasks []model.Task) []taskItem {
	items := make([]taskItem, len(tasks))
	for i, t := range tasks {
		items[i] = toTaskItem(t)
	}
	return items
}

func toDependencyItems(deps []model.Dependency) []dependencyItem {
	items := make([]dependencyItem, len(deps))
	for i, d := range deps {
		items[i] = dependencyItem{
			ID:               d.ID,
			PredecessorID:    d.PredecessorID,
			SuccessorID:      d.SuccessorID,
			Type:             d.Type,
			LagDays:          d.LagDays,
			PredecessorTitle: d.PredecessorTitle,
			SuccessorTitle:   d.SuccessorTitle,
		}
	}
	return items
}
