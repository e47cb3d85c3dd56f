package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/taskcreate"
	"github.com/taskline/taskline/internal/app/taskedit"
	"github.com/taskline/taskline/internal/app/taskremove"
	"github.com/taskline/taskline/internal/backend"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/model"
)

// NewTaskCommand returns the task parent command.
func NewTaskCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("task", "Manage tasks.")
}

type TaskShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewTaskShowCommand returns the task show command.
func NewTaskShowCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskShowCommand {
	c := &TaskShowCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("show", "Show a task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskShowCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, _, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	task, err := b.GetTask(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}

type TaskCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	title       string
	description string
	start       string
	end         string
	due         string
	status      string
	assignee    string
	priority    int
	parent      string
	format      string

	prioritySet bool
}

// NewTaskCreateCommand returns the task create command.
func NewTaskCreateCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskCreateCommand {
	c := &TaskCreateCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("create", "Create a task.")
	c.Cmd.Arg("title", "Task title.").Required().StringVar(&c.title)
	c.Cmd.Flag("description", "Task description.").Short('d').StringVar(&c.description)
	c.Cmd.Flag("start", "Start date (YYYY-MM-DD).").StringVar(&c.start)
	c.Cmd.Flag("end", "End date (YYYY-MM-DD).").StringVar(&c.end)
	c.Cmd.Flag("due", "Due date (YYYY-MM-DD), derived from the other dates when missing.").StringVar(&c.due)
	c.Cmd.Flag("status", "Initial status.").Default(string(model.TaskStatusNew)).StringVar(&c.status)
	c.Cmd.Flag("assignee", "Assignee ID.").StringVar(&c.assignee)
	c.Cmd.Flag("priority", "Priority.").IsSetByUser(&c.prioritySet).IntVar(&c.priority)
	c.Cmd.Flag("parent", "Parent task ID.").StringVar(&c.parent)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCreateCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	status, err := model.ParseTaskStatus(c.status)
	if err != nil {
		return err
	}
	draft := edit.TaskDraft{
		Title:       c.title,
		Description: c.description,
		Status:      status,
		AssigneeID:  c.assignee,
		ParentID:    c.parent,
	}
	if draft.StartDate, err = flagDate("start", c.start); err != nil {
		return err
	}
	if draft.EndDate, err = flagDate("end", c.end); err != nil {
		return err
	}
	if draft.DueDate, err = flagDate("due", c.due); err != nil {
		return err
	}
	if c.prioritySet {
		priority := c.priority
		draft.Priority = &priority
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Backend: b,
		Session: session,
		Now:     c.rootCmd.Now,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskcreate.Request{Task: draft})
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}

type TaskEditCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	start  optionalString
	end    optionalString
	status string
	format string
}

// NewTaskEditCommand returns the task edit command.
func NewTaskEditCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskEditCommand {
	c := &TaskEditCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("edit", "Edit the dates or the status of a task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("start", "Start date (YYYY-MM-DD), empty clears it.").SetValue(&c.start)
	c.Cmd.Flag("end", "End date (YYYY-MM-DD), empty clears it.").SetValue(&c.end)
	c.Cmd.Flag("status", "Status (new, in_progress, done, cancelled).").StringVar(&c.status)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c *TaskEditCommand) Name() string { return c.Cmd.FullCommand() }

func (c *TaskEditCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	req := taskedit.Request{
		TaskID:    c.id,
		StartDate: c.start.value,
		EndDate:   c.end.value,
	}
	if c.status != "" {
		status, err := model.ParseTaskStatus(c.status)
		if err != nil {
			return err
		}
		req.Status = &status
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	task, err := runTaskEdit(ctx, c.rootCmd, b, session, req)
	if err != nil {
		return err
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}

type TaskStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	status string
	format string
}

// NewTaskStatusCommand returns the task status command.
func NewTaskStatusCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskStatusCommand {
	c := &TaskStatusCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("status", "Change the status of a task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.id)
	c.Cmd.Arg("status", "New status (new, in_progress, done, cancelled).").Required().StringVar(&c.status)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskStatusCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	status, err := model.ParseTaskStatus(c.status)
	if err != nil {
		return err
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	task, err := runTaskEdit(ctx, c.rootCmd, b, session, taskedit.Request{TaskID: c.id, Status: &status})
	if err != nil {
		return err
	}

	return c.rootCmd.Printer(c.format).PrintTask(*task)
}

func runTaskEdit(ctx context.Context, rootCmd *RootCommand, b backend.Backend, session model.Session, req taskedit.Request) (*model.Task, error) {
	svc, err := taskedit.NewService(taskedit.ServiceConfig{
		Backend: b,
		Session: session,
		Now:     rootCmd.Now,
		Logger:  rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("could not edit task: %w", err)
	}
	return task, nil
}

type TaskRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewTaskRmCommand returns the task rm command.
func NewTaskRmCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskRmCommand {
	c := &TaskRmCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("rm", "Delete a task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.id)

	return c
}

func (c TaskRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskRmCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := taskremove.NewService(taskremove.ServiceConfig{
		Backend: b,
		Session: session,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, taskremove.Request{TaskID: c.id}); err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(fmt.Sprintf("Task %s deleted.", c.id))
}
