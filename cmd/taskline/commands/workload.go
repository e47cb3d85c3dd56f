package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/workload"
)

type WorkloadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	onlyLoaded bool
	employeeID string
	format     string
}

// NewWorkloadCommand returns the workload command.
func NewWorkloadCommand(rootCmd *RootCommand, app *kingpin.Application) *WorkloadCommand {
	c := &WorkloadCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("workload", "Show the task load of every employee.")
	c.Cmd.Flag("only-loaded", "Hide employees without active tasks.").BoolVar(&c.onlyLoaded)
	c.Cmd.Flag("employee", "Show the counters and tasks of a single employee ID.").StringVar(&c.employeeID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c WorkloadCommand) Name() string { return c.Cmd.FullCommand() }

func (c WorkloadCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, _, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := workload.NewService(workload.ServiceConfig{
		Backend: b,
		Now:     c.rootCmd.Now,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if c.employeeID != "" {
		d, err := svc.Detail(ctx, c.employeeID)
		if err != nil {
			return fmt.Errorf("could not compute workload: %w", err)
		}
		if err := c.rootCmd.Printer(c.format).PrintWorkloadDetail(*d); err != nil {
			return fmt.Errorf("could not print workload: %w", err)
		}
		return nil
	}

	rows, err := svc.Run(ctx, workload.Request{OnlyLoaded: c.onlyLoaded})
	if err != nil {
		return fmt.Errorf("could not compute workload: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintWorkload(rows); err != nil {
		return fmt.Errorf("could not print workload: %w", err)
	}
	return nil
}
