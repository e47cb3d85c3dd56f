package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	appgantt "github.com/taskline/taskline/internal/app/gantt"
	"github.com/taskline/taskline/internal/printer"
	"github.com/taskline/taskline/internal/storage"
)

type GanttCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	offline  bool
	noCache  bool
	rootOnly bool
	assignee string
	selected string
	width    int
	format   string
}

// NewGanttCommand returns the gantt command.
func NewGanttCommand(rootCmd *RootCommand, app *kingpin.Application) *GanttCommand {
	c := &GanttCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("gantt", "Render the task timeline grouped by assignee.")
	c.Cmd.Flag("offline", "Render the last cached snapshot without calling the backend.").BoolVar(&c.offline)
	c.Cmd.Flag("no-cache", "Don't store the fetched tasks in the offline cache.").BoolVar(&c.noCache)
	c.Cmd.Flag("root-only", "Hide subtasks.").BoolVar(&c.rootOnly)
	c.Cmd.Flag("assignee", "Only show the tasks of an assignee ID.").StringVar(&c.assignee)
	c.Cmd.Flag("select", "Highlight a task ID.").StringVar(&c.selected)
	c.Cmd.Flag("width", "Width of the bar area in cells.").IntVar(&c.width)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c GanttCommand) Name() string { return c.Cmd.FullCommand() }

func (c GanttCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}
	logger := c.rootCmd.Logger

	b, session, source, err := c.rootCmd.Backend(ctx)
	if err != nil && !c.offline {
		return err
	}

	var cache storage.SnapshotRepository
	if c.offline || !c.noCache {
		repo, err := c.rootCmd.Cache(ctx)
		if err != nil {
			return err
		}
		defer repo.Close()
		cache = repo
	}

	// Offline renders keep working with an expired or missing login.
	if c.offline && b == nil {
		session = LocalSession()
		session.CanEdit = false
		if source, err = c.offlineSource(); err != nil {
			return err
		}
	}

	svc, err := appgantt.NewService(appgantt.ServiceConfig{
		Backend: b,
		Cache:   cache,
		Source:  source,
		Session: session,
		Now:     c.rootCmd.Now,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	rootOnly := c.rootOnly || c.rootCmd.Config.Gantt.RootOnly
	res, err := svc.Run(ctx, appgantt.Request{
		Offline:        c.offline,
		RootOnly:       rootOnly,
		AssigneeID:     c.assignee,
		SelectedTaskID: c.selected,
	})
	if err != nil {
		return fmt.Errorf("could not render gantt: %w", err)
	}

	if res.FromCache {
		logger.Infof("Rendering snapshot fetched at %s", printer.FormatTimestamp(res.FetchedAt))
	}

	if c.width > 0 {
		c.rootCmd.Config.Gantt.Width = c.width
	}
	if err := c.rootCmd.Printer(c.format).PrintGantt(res.Chart); err != nil {
		return fmt.Errorf("could not print gantt: %w", err)
	}

	return nil
}

// offlineSource resolves the cache source without a usable backend.
func (c GanttCommand) offlineSource() (string, error) {
	if c.rootCmd.BackendType == BackendMemory {
		return "", fmt.Errorf("offline renders need a cached http backend")
	}
	if c.rootCmd.APIURL != "" {
		return c.rootCmd.APIURL, nil
	}
	stored, err := c.rootCmd.SessionStore().Load()
	if err != nil {
		return "", fmt.Errorf("could not resolve the api url, use --api-url: %w", err)
	}
	return stored.APIURL, nil
}
