package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/depcreate"
	"github.com/taskline/taskline/internal/app/deplist"
	"github.com/taskline/taskline/internal/app/depremove"
	"github.com/taskline/taskline/internal/edit"
	"github.com/taskline/taskline/internal/model"
)

var dependencyTypes = []string{
	string(model.DependencyFinishToStart),
	string(model.DependencyStartToStart),
	string(model.DependencyFinishToFinish),
	string(model.DependencyStartToFinish),
}

// NewDepCommand returns the dependency parent command.
func NewDepCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("dep", "Manage task dependencies.")
}

type DepListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task        string
	predecessor string
	successor   string
	format      string
}

// NewDepListCommand returns the dependency list command.
func NewDepListCommand(rootCmd *RootCommand, depCmd *kingpin.CmdClause) *DepListCommand {
	c := &DepListCommand{rootCmd: rootCmd}

	c.Cmd = depCmd.Command("list", "List dependencies.")
	c.Cmd.Flag("task", "Dependencies of a task on either side.").StringVar(&c.task)
	c.Cmd.Flag("predecessor", "Filter by predecessor task ID.").StringVar(&c.predecessor)
	c.Cmd.Flag("successor", "Filter by successor task ID.").StringVar(&c.successor)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c DepListCommand) Name() string { return c.Cmd.FullCommand() }

func (c DepListCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, _, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := deplist.NewService(deplist.ServiceConfig{
		Backend: b,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	deps, err := svc.Run(ctx, deplist.Request{
		TaskID:        c.task,
		PredecessorID: c.predecessor,
		SuccessorID:   c.successor,
	})
	if err != nil {
		return fmt.Errorf("could not list dependencies: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintDependencies(deps); err != nil {
		return fmt.Errorf("could not print dependencies: %w", err)
	}
	return nil
}

type DepCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id          string
	predecessor string
	successor   string
	depType     string
	lag         string
	format      string
}

// NewDepCreateCommand returns the dependency create command.
func NewDepCreateCommand(rootCmd *RootCommand, depCmd *kingpin.CmdClause) *DepCreateCommand {
	c := &DepCreateCommand{rootCmd: rootCmd}

	c.Cmd = depCmd.Command("create", "Make a task depend on another one.")
	c.Cmd.Arg("predecessor", "Predecessor task ID.").Required().StringVar(&c.predecessor)
	c.Cmd.Arg("successor", "Successor task ID.").Required().StringVar(&c.successor)
	c.Cmd.Flag("type", "Dependency type.").Default(string(model.DependencyFinishToStart)).EnumVar(&c.depType, dependencyTypes...)
	c.Cmd.Flag("lag", "Lag in days, invalid or negative values are 0.").Default("0").StringVar(&c.lag)
	c.Cmd.Flag("replace", "Replace the dependency with this ID instead of creating one.").StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c DepCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c DepCreateCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := depcreate.NewService(depcreate.ServiceConfig{
		Backend: b,
		Session: session,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	dep, err := svc.Run(ctx, depcreate.Request{
		ID: c.id,
		Dependency: edit.DependencyDraft{
			PredecessorID: c.predecessor,
			SuccessorID:   c.successor,
			Type:          model.DependencyType(c.depType),
			LagDays:       edit.ParseLag(c.lag),
		},
	})
	if err != nil {
		return fmt.Errorf("could not save dependency: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintDependencies([]model.Dependency{*dep}); err != nil {
		return fmt.Errorf("could not print dependency: %w", err)
	}
	return nil
}

type DepRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewDepRmCommand returns the dependency rm command.
func NewDepRmCommand(rootCmd *RootCommand, depCmd *kingpin.CmdClause) *DepRmCommand {
	c := &DepRmCommand{rootCmd: rootCmd}

	c.Cmd = depCmd.Command("rm", "Delete a dependency.")
	c.Cmd.Arg("id", "Dependency ID.").Required().StringVar(&c.id)

	return c
}

func (c DepRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c DepRmCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	b, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	svc, err := depremove.NewService(depremove.ServiceConfig{
		Backend: b,
		Session: session,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, depremove.Request{ID: c.id}); err != nil {
		return fmt.Errorf("could not delete dependency: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(fmt.Sprintf("Dependency %s deleted.", c.id))
}
