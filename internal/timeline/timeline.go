// Package timeline computes the visible date range of a set of tasks and maps
// task date ranges onto it.
package timeline

import (
	"fmt"
	"math"

	"github.com/taskline/taskline/internal/model"
)

// MinWidthPercent keeps every positioned bar visible and clickable.
const MinWidthPercent = 2.0

// Range is the visible timeline.
type Range struct {
	Min model.Date
	Max model.Date
	// Months are the month buckets, each the first day of its month, covering Min to Max.
	Months []model.Date
}

// SpanDays returns the number of days between Min and Max, at least 1.
func (r Range) SpanDays() int {
	span := model.DaysBetween(r.Min, r.Max)
	if span <= 0 {
		return 1
	}
	return span
}

// Bucket returns the smallest range covering every start and end date of the tasks.
// It returns model.ErrEmptyTimeline when no task carries a date.
func Bucket(tasks []model.Task) (Range, error) {
	var (
		earliest, latest model.Date
		found            bool
	)
	visit := func(d *model.Date) {
		if d == nil || d.IsZero() {
			return
		}
		if !found || d.Before(earliest) {
			earliest = *d
		}
		if !found || d.After(latest) {
			latest = *d
		}
		found = true
	}

	for _, t := range tasks {
		visit(t.StartDate)
		visit(t.EndDate)
	}

	if !found {
		return Range{}, fmt.Errorf("%d tasks without start or end dates: %w", len(tasks), model.ErrEmptyTimeline)
	}

	return Range{
		Min:    earliest,
		Max:    latest,
		Months: months(earliest, latest),
	}, nil
}

// months returns the first day of every month from earliest's month up to latest's month, inclusive.
func months(earliest, latest model.Date) []model.Date {
	last := latest.FirstOfMonth()
	var buckets []model.Date
	for m := earliest.FirstOfMonth(); !m.After(last); m = m.AddMonths(1) {
		buckets = append(buckets, m)
	}
	return buckets
}

// Position is a normalized horizontal interval inside a Range, in percent.
type Position struct {
	LeftPercent  float64
	WidthPercent float64
}

// Place maps the task dates onto the range. It returns false when the task lacks
// a start or end date or its end precedes its start, the caller lists it without
// a bar.
//
// LeftPercent is the start offset over the span, except for a bar widened to
// MinWidthPercent near the end of the range: it is shifted left to
// 100-MinWidthPercent so it never overhangs the range.
func Place(t model.Task, r Range) (Position, bool) {
	if !t.Dated() || t.EndDate.Before(*t.StartDate) {
		return Position{}, false
	}

	span := float64(r.SpanDays())
	left := 100 * float64(model.DaysBetween(r.Min, *t.StartDate)) / span
	width := 100 * float64(model.DaysBetween(*t.StartDate, *t.EndDate)) / span

	width = math.Max(MinWidthPercent, width)
	if left+width > 100 {
		left = math.Max(0, 100-width)
	}

	return Position{
		LeftPercent:  left,
		WidthPercent: width,
	}, true
}

// Cells converts a position into terminal cells for a chart width.
// Every bar takes at least one cell and never overflows the width.
func (p Position) Cells(width int) (offset, length int) {
	if width <= 0 {
		return 0, 0
	}

	offset = int(math.Round(p.LeftPercent * float64(width) / 100))
	length = int(math.Round(p.WidthPercent * float64(width) / 100))
	if length < 1 {
		length = 1
	}
	if offset > width-1 {
		offset = width - 1
	}
	if offset < 0 {
		offset = 0
	}
	if offset+length > width {
		length = width - offset
	}
	return offset, length
}
