package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/important"
)

type ImportantCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	limit  int
	format string
}

// NewImportantCommand returns the important command.
func NewImportantCommand(rootCmd *RootCommand, app *kingpin.Application) *ImportantCommand {
	c := &ImportantCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("important", "Show the new tasks blocking subtasks in progress and who could take them.")
	c.Cmd.Flag("limit", "Show only the first N tasks, 0 shows all.").Default("0").IntVar(&c.limit)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ImportantCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImportantCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, _, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := important.NewService(important.ServiceConfig{
		Backend: b,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	items, err := svc.Run(ctx, important.Request{Limit: c.limit})
	if err != nil {
		return fmt.Errorf("could not list important tasks: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintImportant(items); err != nil {
		return fmt.Errorf("could not print important tasks: %w", err)
	}
	return nil
}
