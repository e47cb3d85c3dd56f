package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type WhoamiCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewWhoamiCommand returns the whoami command.
func NewWhoamiCommand(rootCmd *RootCommand, app *kingpin.Application) *WhoamiCommand {
	c := &WhoamiCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("whoami", "Show the user, role and edit capability of the session.")
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c WhoamiCommand) Name() string { return c.Cmd.FullCommand() }

func (c WhoamiCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}

	_, session, _, err := c.rootCmd.Backend(ctx)
	if err != nil {
		return err
	}

	if err := c.rootCmd.Printer(c.format).PrintSession(session); err != nil {
		return fmt.Errorf("could not print session: %w", err)
	}
	return nil
}
