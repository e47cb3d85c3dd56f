package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/logout"
	"github.com/taskline/taskline/internal/model"
)

type LogoutCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewLogoutCommand returns the logout command.
func NewLogoutCommand(rootCmd *RootCommand, app *kingpin.Application) *LogoutCommand {
	c := &LogoutCommand{rootCmd: rootCmd}
	c.Cmd = app.Command("logout", "Revoke and forget the stored session.")
	return c
}

func (c LogoutCommand) Name() string { return c.Cmd.FullCommand() }

func (c LogoutCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	p := c.rootCmd.Printer(formatTable)

	store := c.rootCmd.SessionStore()
	stored, err := store.Load()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return p.PrintMessage("Not logged in.")
		}
		return fmt.Errorf("could not load session: %w", err)
	}

	authClient, err := c.rootCmd.AuthClient(stored.APIURL)
	if err != nil {
		return err
	}

	svc, err := logout.NewService(logout.ServiceConfig{
		Revoker: authClient,
		Store:   store,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if _, err := svc.Run(ctx); err != nil {
		return fmt.Errorf("could not log out: %w", err)
	}

	return p.PrintMessage("Logged out.")
}
