// Package gantt builds the renderable Gantt model from already fetched tasks.
package gantt

import (
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/timeline"
)

// Bar is a positioned task.
type Bar struct {
	Task     model.Task
	Position timeline.Position
	Color    Color
	Progress int
	Selected bool
}

// Row is the bars of one assignee, in input order. Undated tasks of the
// assignee are listed without a bar.
type Row struct {
	Assignee string
	Bars     []Bar
	Undated  []model.Task
}

// MonthLabel is a header cell of the chart.
type MonthLabel struct {
	Month        model.Date
	LeftPercent  float64
	WidthPercent float64
}

// Chart is the renderable Gantt chart.
type Chart struct {
	// Empty is set when no task is dated, renderers show a placeholder instead of a range.
	Empty        bool
	Range        timeline.Range
	Header       []MonthLabel
	Rows         []Row
	Legend       []LegendEntry
	Dependencies []model.Dependency
	CanEdit      bool
}

// Options customize a render.
type Options struct {
	CanEdit   bool
	Selection Selection
}

// Render builds the chart for the tasks. An empty timeline is not a failure,
// the chart is flagged as Empty and every task is listed without a bar.
func Render(tasks []model.Task, deps []model.Dependency, opts Options) Chart {
	chart := Chart{
		Legend:       Legend(),
		Dependencies: deps,
		CanEdit:      opts.CanEdit,
	}

	rng, err := timeline.Bucket(tasks)
	if err != nil {
		chart.Empty = true
	} else {
		chart.Range = rng
		chart.Header = header(rng)
	}

	for _, g := range GroupByAssignee(tasks) {
		row := Row{Assignee: g.Assignee}
		for _, t := range g.Tasks {
			pos, ok := timeline.Place(t, rng)
			if chart.Empty || !ok {
				row.Undated = append(row.Undated, t)
				continue
			}
			row.Bars = append(row.Bars, Bar{
				Task:     t,
				Position: pos,
				Color:    StatusColor(t.Status),
				Progress: Progress(t),
				Selected: opts.Selection.IsSelected(t.ID),
			})
		}
		chart.Rows = append(chart.Rows, row)
	}

	return chart
}

// header places the month buckets on the range, clipping the first and last months.
func header(rng timeline.Range) []MonthLabel {
	span := float64(rng.SpanDays())
	labels := make([]MonthLabel, 0, len(rng.Months))
	for _, m := range rng.Months {
		start := m
		if start.Before(rng.Min) {
			start = rng.Min
		}
		end := m.AddMonths(1)
		if end.After(rng.Max) {
			end = rng.Max
		}

		left := 100 * float64(model.DaysBetween(rng.Min, start)) / span
		width := 100 * float64(model.DaysBetween(start, end)) / span
		if width < 0 {
			width = 0
		}
		labels = append(labels, MonthLabel{Month: m, LeftPercent: left, WidthPercent: width})
	}
	return labels
}
