package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

// NewCacheCommand returns the offline cache parent command.
func NewCacheCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("cache", "Manage the offline snapshots.")
}

type CacheListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewCacheListCommand returns the cache list command.
func NewCacheListCommand(rootCmd *RootCommand, cacheCmd *kingpin.CmdClause) *CacheListCommand {
	c := &CacheListCommand{rootCmd: rootCmd}

	c.Cmd = cacheCmd.Command("list", "List the cached snapshots.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c CacheListCommand) Name() string { return c.Cmd.FullCommand() }

func (c CacheListCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.Cache(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	snapshots, err := repo.ListSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("could not list snapshots: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintSnapshots(snapshots); err != nil {
		return fmt.Errorf("could not print snapshots: %w", err)
	}
	return nil
}

type CacheRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	source string
}

// NewCacheRmCommand returns the cache rm command.
func NewCacheRmCommand(rootCmd *RootCommand, cacheCmd *kingpin.CmdClause) *CacheRmCommand {
	c := &CacheRmCommand{rootCmd: rootCmd}

	c.Cmd = cacheCmd.Command("rm", "Delete the cached snapshot of a source.")
	c.Cmd.Arg("source", "Snapshot source, the API URL or the seed path.").Required().StringVar(&c.source)

	return c
}

func (c CacheRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c CacheRmCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.Cache(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.DeleteSnapshot(ctx, c.source); err != nil {
		return fmt.Errorf("could not delete snapshot: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(fmt.Sprintf("Snapshot of %s deleted.", c.source))
}
