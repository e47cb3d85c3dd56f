package printer

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskline/taskline/internal/gantt"
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/timeline"
)

const (
	// DefaultGanttWidth is the default number of cells of the Gantt bars area.
	DefaultGanttWidth = 60
	minGanttWidth     = 10
	maxTitleRunes     = 32
)

// TablePrinterConfig is the configuration of the table printer.
type TablePrinterConfig struct {
	Writer io.Writer
	// GanttWidth is the number of cells of the Gantt bars area.
	GanttWidth int
	NoColor    bool
	Now        func() time.Time
}

func (c *TablePrinterConfig) defaults() {
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	if c.GanttWidth == 0 {
		c.GanttWidth = DefaultGanttWidth
	}
	if c.GanttWidth < minGanttWidth {
		c.GanttWidth = minGanttWidth
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// TablePrinter prints timeline information in a table format.
type TablePrinter struct {
	writer   io.Writer
	width    int
	noColor  bool
	now      func() time.Time
	renderer *lipgloss.Renderer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(cfg TablePrinterConfig) *TablePrinter {
	cfg.defaults()
	return &TablePrinter{
		writer:   cfg.Writer,
		width:    cfg.GanttWidth,
		noColor:  cfg.NoColor,
		now:      cfg.Now,
		renderer: lipgloss.NewRenderer(cfg.Writer),
	}
}

// PrintGantt prints the chart as a text Gantt with one line per task.
func (t *TablePrinter) PrintGantt(chart gantt.Chart) error {
	if chart.Empty {
		fmt.Fprintln(t.writer, "No dated tasks to lay out.")
	} else {
		fmt.Fprintf(t.writer, "Timeline %s (%d days)\n\n", FormatDateRange(&chart.Range.Min, &chart.Range.Max), chart.Range.SpanDays())
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	if !chart.Empty {
		fmt.Fprintf(tw, "\t%s\n", t.ganttHeader(chart.Header))
	}

	for _, row := range chart.Rows {
		fmt.Fprintf(tw, "%s\t\n", row.Assignee)
		for _, b := range row.Bars {
			fmt.Fprintf(tw, "%s\t%s\n", barLabel(b.Task, b.Selected), t.ganttBar(b))
		}
		for _, task := range row.Undated {
			fmt.Fprintf(tw, "%s\t%s\n", barLabel(task, false), FormatDateRange(task.StartDate, task.EndDate))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(chart.Dependencies) > 0 {
		fmt.Fprintln(t.writer, "\nDependencies:")
		for _, d := range chart.Dependencies {
			fmt.Fprintf(t.writer, "  %s → %s (%s%s)\n", nameOr(d.PredecessorTitle, d.PredecessorID), nameOr(d.SuccessorTitle, d.SuccessorID), d.Type, lagSuffix(d.LagDays))
		}
	}

	legend := make([]string, 0, len(chart.Legend))
	for _, l := range chart.Legend {
		legend = append(legend, t.paint("■", l.Color)+" "+string(l.Status))
	}
	fmt.Fprintf(t.writer, "\nLegend: %s\n", strings.Join(legend, "  "))

	if !chart.CanEdit {
		fmt.Fprintln(t.writer, "Read only.")
	}

	return nil
}

// ganttHeader places the month labels on the bars area.
func (t *TablePrinter) ganttHeader(labels []gantt.MonthLabel) string {
	line := []rune(strings.Repeat(" ", t.width))
	for _, l := range labels {
		offset, length := timeline.Position{LeftPercent: l.LeftPercent, WidthPercent: l.WidthPercent}.Cells(t.width)
		text := []rune(l.Month.Time().Format("Jan 2006"))
		if length < len(text) {
			text = []rune(l.Month.Time().Format("Jan"))
		}
		if length < len(text) {
			continue
		}
		copy(line[offset:], text)
	}
	return strings.TrimRight(string(line), " ")
}

// ganttBar draws the filled part of the bar from its progress and the rest shaded.
func (t *TablePrinter) ganttBar(b gantt.Bar) string {
	offset, length := b.Position.Cells(t.width)
	filled := int(math.Round(float64(length) * float64(b.Progress) / 100))
	if filled > length {
		filled = length
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
	return strings.Repeat(" ", offset) + t.paint(bar, b.Color)
}

func (t *TablePrinter) paint(s string, c gantt.Color) string {
	if t.noColor {
		return s
	}
	return t.renderer.NewStyle().Foreground(lipgloss.Color(string(c))).Render(s)
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tASSIGNEE\tDATES\tDUE")

	today := model.DateOf(t.now())
	for _, task := range tasks {
		due := FormatDate(task.DueDate)
		if task.Overdue(today) {
			due += " (overdue)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			truncate(task.Title, maxTitleRunes),
			task.Status,
			nameOr(task.Assignee, gantt.Unassigned),
			FormatDateRange(task.StartDate, task.EndDate),
			due,
		)
	}

	return nil
}

// PrintTask prints the detail of a task.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", task.ID)
	fmt.Fprintf(t.writer, "Title:      %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(t.writer, "Notes:      %s\n", task.Description)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Assignee:   %s\n", nameOr(task.Assignee, gantt.Unassigned))
	fmt.Fprintf(t.writer, "Start:      %s\n", FormatDate(task.StartDate))
	fmt.Fprintf(t.writer, "End:        %s\n", FormatDate(task.EndDate))
	fmt.Fprintf(t.writer, "Due:        %s\n", FormatDate(task.DueDate))
	fmt.Fprintf(t.writer, "Progress:   %d%%\n", gantt.Progress(task))

	if task.Priority != nil {
		fmt.Fprintf(t.writer, "Priority:   %d\n", *task.Priority)
	}
	if task.ParentID != "" {
		fmt.Fprintf(t.writer, "Parent:     %s\n", task.ParentID)
	}

	return nil
}

// PrintDependencies prints dependencies in a table format.
func (t *TablePrinter) PrintDependencies(deps []model.Dependency) error {
	if len(deps) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tPREDECESSOR\tSUCCESSOR\tTYPE\tLAG")
	for _, d := range deps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dd\n",
			d.ID,
			truncate(nameOr(d.PredecessorTitle, d.PredecessorID), maxTitleRunes),
			truncate(nameOr(d.SuccessorTitle, d.SuccessorID), maxTitleRunes),
			d.Type,
			d.LagDays,
		)
	}

	return nil
}

// PrintWorkload prints the per assignee workload in a table format.
func (t *TablePrinter) PrintWorkload(rows []model.Workload) error {
	if len(rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ASSIGNEE\tTOTAL\tACTIVE\tOVERDUE\tCRITICAL")
	for _, w := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", nameOr(w.Assignee, gantt.Unassigned), w.Total, w.Active, w.Overdue, w.Critical)
	}

	return nil
}

// PrintWorkloadDetail prints the counters of one employee followed by its tasks.
func (t *TablePrinter) PrintWorkloadDetail(d model.WorkloadDetail) error {
	fmt.Fprintf(t.writer, "Employee:   %s\n", nameOr(d.Assignee, d.AssigneeID))
	fmt.Fprintf(t.writer, "Total:      %d\n", d.Total)
	fmt.Fprintf(t.writer, "Active:     %d\n", d.Active)
	fmt.Fprintf(t.writer, "Overdue:    %d\n", d.Overdue)
	fmt.Fprintf(t.writer, "Critical:   %d\n", d.Critical)

	if len(d.Tasks) == 0 {
		return nil
	}
	fmt.Fprintln(t.writer)
	return t.PrintTasks(d.Tasks)
}

// PrintImportant prints the important tasks with their recommended employees.
func (t *TablePrinter) PrintImportant(items []model.ImportantTask) error {
	if len(items) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tRECOMMENDED")
	for _, it := range items {
		names := make([]string, len(it.Recommended))
		for i, r := range it.Recommended {
			names[i] = r.FullName
			if r.Reason == model.ReasonParentAssignee {
				names[i] += " (parent)"
			}
		}
		recommended := strings.Join(names, ", ")
		if recommended == "" {
			recommended = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			it.Task.ID,
			truncate(it.Task.Title, maxTitleRunes),
			FormatDate(it.Task.DueDate),
			recommended,
		)
	}

	return nil
}

// PrintSnapshots prints the cached snapshots in a table format.
func (t *TablePrinter) PrintSnapshots(snapshots []model.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SOURCE\tTASKS\tDEPENDENCIES\tFETCHED")
	now := t.now()
	for _, s := range snapshots {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Source, len(s.Tasks), len(s.Dependencies), TimeAgo(s.FetchedAt, now))
	}

	return nil
}

// PrintSession prints the logged in identity.
func (t *TablePrinter) PrintSession(session model.Session) error {
	canEdit := "no"
	if session.CanEdit {
		canEdit = "yes"
	}

	fmt.Fprintf(t.writer, "User:       %s\n", session.User.Username)
	if session.User.Email != "" {
		fmt.Fprintf(t.writer, "Email:      %s\n", session.User.Email)
	}
	fmt.Fprintf(t.writer, "Role:       %s\n", session.Role)
	fmt.Fprintf(t.writer, "Can edit:   %s\n", canEdit)
	if len(session.User.Groups) > 0 {
		fmt.Fprintf(t.writer, "Groups:     %s\n", strings.Join(session.User.Groups, ", "))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func barLabel(task model.Task, selected bool) string {
	prefix := "  "
	if selected {
		prefix = "> "
	}
	return prefix + truncate(task.Title, maxTitleRunes)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func lagSuffix(days int) string {
	if days == 0 {
		return ""
	}
	return fmt.Sprintf(", lag %dd", days)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
