package timeline_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/timeline"
)

func date(s string) *model.Date { return model.DatePtr(model.MustParseDate(s)) }

func datesOf(ds []model.Date) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func TestBucket(t *testing.T) {
	tests := map[string]struct {
		tasks     []model.Task
		expMin    string
		expMax    string
		expMonths []string
		expErr    error
	}{
		"Two tasks over two months should produce two buckets.": {
			tasks: []model.Task{
				{ID: "a", StartDate: date("2024-01-10"), EndDate: date("2024-01-20")},
				{ID: "b", StartDate: date("2024-02-01"), EndDate: date("2024-02-05")},
			},
			expMin:    "2024-01-10",
			expMax:    "2024-02-05",
			expMonths: []string{"2024-01-01", "2024-02-01"},
		},

		"Half dated tasks should still contribute their date.": {
			tasks: []model.Task{
				{ID: "a", StartDate: date("2024-03-15")},
				{ID: "b", EndDate: date("2024-05-02")},
				{ID: "c"},
			},
			expMin:    "2024-03-15",
			expMax:    "2024-05-02",
			expMonths: []string{"2024-03-01", "2024-04-01", "2024-05-01"},
		},

		"A range across the year boundary should roll the year.": {
			tasks: []model.Task{
				{ID: "a", StartDate: date("2023-11-30"), EndDate: date("2024-01-01")},
			},
			expMin:    "2023-11-30",
			expMax:    "2024-01-01",
			expMonths: []string{"2023-11-01", "2023-12-01", "2024-01-01"},
		},

		"A single day should produce a single bucket.": {
			tasks: []model.Task{
				{ID: "a", StartDate: date("2024-01-31"), EndDate: date("2024-01-31")},
			},
			expMin:    "2024-01-31",
			expMax:    "2024-01-31",
			expMonths: []string{"2024-01-01"},
		},

		"No dated task should be an empty timeline.": {
			tasks:  []model.Task{{ID: "a"}, {ID: "b", DueDate: date("2024-01-01")}},
			expErr: model.ErrEmptyTimeline,
		},

		"No task at all should be an empty timeline.": {
			expErr: model.ErrEmptyTimeline,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := timeline.Bucket(test.tasks)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expMin, r.Min.String())
			assert.Equal(t, test.expMax, r.Max.String())
			assert.Equal(t, test.expMonths, datesOf(r.Months))
		})
	}
}

func TestPlace(t *testing.T) {
	r := timeline.Range{Min: model.MustParseDate("2024-01-10"), Max: model.MustParseDate("2024-02-05")}

	tests := map[string]struct {
		task     model.Task
		rng      timeline.Range
		expOK    bool
		expLeft  float64
		expWidth float64
	}{
		"The first task should start at zero.": {
			task:     model.Task{StartDate: date("2024-01-10"), EndDate: date("2024-01-20")},
			rng:      r,
			expOK:    true,
			expLeft:  0,
			expWidth: 100 * 10.0 / 26,
		},
		"A later task should be offset by its start.": {
			task:     model.Task{StartDate: date("2024-02-01"), EndDate: date("2024-02-05")},
			rng:      r,
			expOK:    true,
			expLeft:  100 * 22.0 / 26,
			expWidth: 100 * 4.0 / 26,
		},
		"A one day task should get the minimum width.": {
			task:     model.Task{StartDate: date("2024-01-15"), EndDate: date("2024-01-15")},
			rng:      r,
			expOK:    true,
			expLeft:  100 * 5.0 / 26,
			expWidth: timeline.MinWidthPercent,
		},
		"A one day task on the last day should be shifted inside the range.": {
			task:     model.Task{StartDate: date("2024-02-05"), EndDate: date("2024-02-05")},
			rng:      r,
			expOK:    true,
			expLeft:  100 - timeline.MinWidthPercent,
			expWidth: timeline.MinWidthPercent,
		},
		"A single day timeline should not divide by zero.": {
			task:     model.Task{StartDate: date("2024-01-10"), EndDate: date("2024-01-10")},
			rng:      timeline.Range{Min: model.MustParseDate("2024-01-10"), Max: model.MustParseDate("2024-01-10")},
			expOK:    true,
			expLeft:  0,
			expWidth: timeline.MinWidthPercent,
		},
		"An inverted range should not be placed.": {
			task:  model.Task{StartDate: date("2024-01-20"), EndDate: date("2024-01-12")},
			rng:   r,
			expOK: false,
		},
		"A task without end date should not be placed.": {
			task:  model.Task{StartDate: date("2024-01-15")},
			rng:   r,
			expOK: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			pos, ok := timeline.Place(test.task, test.rng)
			require.Equal(t, test.expOK, ok)
			if !ok {
				return
			}
			assert.InDelta(t, test.expLeft, pos.LeftPercent, 1e-9)
			assert.InDelta(t, test.expWidth, pos.WidthPercent, 1e-9)
		})
	}
}

func TestPlacementProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	base := model.MustParseDate("2024-01-01")

	for i := 0; i < 50; i++ {
		t.Run(fmt.Sprintf("seed-%d", i), func(t *testing.T) {
			var tasks []model.Task
			for j := 0; j < 1+rnd.Intn(20); j++ {
				start := base.AddDays(rnd.Intn(400))
				end := start.AddDays(rnd.Intn(60))
				tasks = append(tasks, model.Task{ID: fmt.Sprint(j), StartDate: &start, EndDate: &end})
			}

			r, err := timeline.Bucket(tasks)
			require.NoError(t, err)

			again, err := timeline.Bucket(tasks)
			require.NoError(t, err)
			assert.Equal(t, r, again)

			for _, task := range tasks {
				assert.False(t, task.StartDate.Before(r.Min))
				assert.False(t, task.EndDate.After(r.Max))

				pos, ok := timeline.Place(task, r)
				require.True(t, ok)
				assert.GreaterOrEqual(t, pos.LeftPercent, 0.0)
				assert.GreaterOrEqual(t, pos.WidthPercent, timeline.MinWidthPercent)
				assert.LessOrEqual(t, pos.LeftPercent+pos.WidthPercent, 100+1e-9)

				posAgain, _ := timeline.Place(task, r)
				assert.Equal(t, pos, posAgain)
			}
		})
	}
}

func TestPositionCells(t *testing.T) {
	tests := map[string]struct {
		pos       timeline.Position
		width     int
		expOffset int
		expLength int
	}{
		"A full width bar should take every cell.": {pos: timeline.Position{LeftPercent: 0, WidthPercent: 100}, width: 50, expOffset: 0, expLength: 50},
		"A tiny bar should take one cell.":         {pos: timeline.Position{LeftPercent: 50, WidthPercent: 0.1}, width: 50, expOffset: 25, expLength: 1},
		"A bar at the end should not overflow.":    {pos: timeline.Position{LeftPercent: 100, WidthPercent: 2}, width: 50, expOffset: 49, expLength: 1},
		"A zero width chart should draw nothing.":  {pos: timeline.Position{LeftPercent: 10, WidthPercent: 10}, width: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			offset, length := test.pos.Cells(test.width)
			assert.Equal(t, test.expOffset, offset)
			assert.Equal(t, test.expLength, length)
		})
	}
}
