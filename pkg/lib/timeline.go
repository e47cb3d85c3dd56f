package lib

import (
	"context"
	"fmt"

	appgantt "github.com/taskline/taskline/internal/app/gantt"
)

// Timeline renders the Gantt chart of the backend tasks.
//
// Every online render replaces the offline cache of the backend, pass
// opts.Offline to render the cached tasks without calling the backend.
// A backend without dated tasks is not an error, the chart is flagged Empty.
//
// Returns [ErrNotFound] for an offline render with nothing cached, or
// [ErrNotValid] for an offline render when the cache is disabled.
func (c *Client) Timeline(ctx context.Context, opts *TimelineOpts) (*Chart, error) {
	svc, err := appgantt.NewService(appgantt.ServiceConfig{
		Backend: c.backend,
		Cache:   c.cache,
		Source:  c.source,
		Session: c.session,
		Now:     c.now,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	var req appgantt.Request
	if opts != nil {
		req = appgantt.Request{
			Offline:        opts.Offline,
			RootOnly:       opts.RootOnly,
			AssigneeID:     opts.AssigneeID,
			SelectedTaskID: opts.SelectedTaskID,
		}
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	chart := fromInternalChart(res.Chart)
	chart.FetchedAt = res.FetchedAt
	chart.FromCache = res.FromCache
	return &chart, nil
}
