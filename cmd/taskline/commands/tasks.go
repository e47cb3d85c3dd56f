package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/tasklist"
	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/model"
)

type TasksCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	status    string
	assignee  string
	dueBefore string
	dueAfter  string
	rootOnly  bool
	query     string
	page      int
	all       bool
	overdue   bool
	format    string
}

// NewTasksCommand returns the tasks list command.
func NewTasksCommand(rootCmd *RootCommand, app *kingpin.Application) *TasksCommand {
	c := &TasksCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("tasks", "List tasks.")
	c.Cmd.Flag("status", "Filter by status (new, in_progress, done, cancelled).").StringVar(&c.status)
	c.Cmd.Flag("assignee", "Filter by assignee ID.").StringVar(&c.assignee)
	c.Cmd.Flag("due-before", "Only tasks due before a date (YYYY-MM-DD).").StringVar(&c.dueBefore)
	c.Cmd.Flag("due-after", "Only tasks due after a date (YYYY-MM-DD).").StringVar(&c.dueAfter)
	c.Cmd.Flag("root-only", "Hide subtasks.").BoolVar(&c.rootOnly)
	c.Cmd.Flag("query", "Search the title.").Short('q').StringVar(&c.query)
	c.Cmd.Flag("page", "Page to list.").IntVar(&c.page)
	c.Cmd.Flag("all", "List every page.").BoolVar(&c.all)
	c.Cmd.Flag("overdue", "Only open tasks past their due date.").BoolVar(&c.overdue)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TasksCommand) Name() string { return c.Cmd.FullCommand() }

func (c TasksCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	filter := backend.TaskFilter{
		AssigneeID: c.assignee,
		RootOnly:   c.rootOnly,
		Query:      c.query,
		Page:       c.page,
	}
	if c.status != "" {
		status, err := model.ParseTaskStatus(c.status)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	var err error
	if filter.DueBefore, err = flagDate("due-before", c.dueBefore); err != nil {
		return err
	}
	if filter.DueAfter, err = flagDate("due-after", c.dueAfter); err != nil {
		return err
	}

	b, _, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Backend: b,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := tasklist.Request{Filter: filter, All: c.all}
	if c.overdue {
		today := model.DateOf(c.rootCmd.Now())
		req.OverdueOf = &today
	}

	res, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintTasks(res.Tasks); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}
	if res.NextPage > 0 {
		c.rootCmd.Logger.Infof("More tasks available, use --page %d or --all", res.NextPage)
	}

	return nil
}

func flagDate(name, value string) (*model.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &d, nil
}
