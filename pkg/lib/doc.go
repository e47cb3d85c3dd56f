// Package lib provides a Go SDK for the taskline task timeline.
//
// This package lets applications render the Gantt timeline of a task backend
// and edit its tasks without shelling out to the taskline CLI binary. It is
// useful for dashboards, scripting and building tools on top of taskline.
//
// # Quick Start
//
// Create a client, render the timeline and move a task:
//
//	client, err := lib.New(ctx, lib.Config{
//	    APIURL:   "https://tasks.example.com/api",
//	    Username: "alice",
//	    Password: os.Getenv("TASKLINE_PASSWORD"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	chart, err := client.Timeline(ctx, nil)
//	for _, row := range chart.Rows {
//	    fmt.Println(row.Assignee, len(row.Bars))
//	}
//
// # Backends
//
// The SDK supports two backend types:
//
//   - [BackendHTTP]: The task REST API. Logs in with Username and Password,
//     or reuses the session stored by a previous login in DataDir.
//   - [BackendMemory]: In-process backend seeded with [Config].Seed or a YAML
//     [Config].SeedFile. Its content is lost when the client is closed.
//
// # Timeline
//
// [Client.Timeline] returns a renderable [Chart]: the month header, one row
// per assignee with the bars positioned as percentages of the timeline, the
// undated tasks, the legend and the dependencies. Every online render is
// cached, pass [TimelineOpts].Offline to render the last cached one.
//
// # Editing
//
// Only managers edit. Mutations of a read only session fail with
// [ErrPermission] before reaching the backend:
//
//	s, _ := client.NewEditSession(ctx)
//	defer s.Close()
//
//	_ = s.StartEdit(taskID)
//	start, end := "2024-03-01", "2024-03-15"
//	_ = s.UpdateDraft(lib.DraftChanges{StartDate: &start, EndDate: &end})
//	res, err := s.Save(ctx)
//
// An empty date in a draft clears it. A save resolution superseded by a newer
// action on the same task is not applied, [SaveResult].Applied reports it.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Task, dependency or cached snapshot does not exist.
//   - [ErrNotValid]: Invalid input.
//   - [ErrInvalidRange]: End date before the start date.
//   - [ErrSelfDependency]: A task depending on itself.
//   - [ErrPermission]: Mutation without edit capability.
//   - [ErrBackend]: The backend rejected or failed the request.
//
// # Testing
//
// Use [BackendMemory] and a temporary data directory to write tests without
// a running API:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    Backend: lib.BackendMemory,
//	    DataDir: t.TempDir(),
//	    Seed:    &lib.Seed{Tasks: tasks},
//	})
//	defer client.Close()
package lib
