package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/taskline/taskline/internal/app/login"
	"github.com/taskline/taskline/internal/model"
)

type LoginCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	username      string
	password      string
	passwordStdin bool
	format        string
}

// NewLoginCommand returns the login command.
func NewLoginCommand(rootCmd *RootCommand, app *kingpin.Application) *LoginCommand {
	c := &LoginCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("login", "Log in against the task API and keep the session.")
	c.Cmd.Flag("username", "Account username.").Short('u').Required().StringVar(&c.username)
	c.Cmd.Flag("password", "Account password, prefer --password-stdin.").StringVar(&c.password)
	c.Cmd.Flag("password-stdin", "Read the password from stdin.").BoolVar(&c.passwordStdin)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c LoginCommand) Name() string { return c.Cmd.FullCommand() }

func (c LoginCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.LoadConfig(); err != nil {
		return err
	}
	logger := c.rootCmd.Logger

	password := c.password
	if c.passwordStdin {
		p, err := readSecret(c.rootCmd)
		if err != nil {
			return err
		}
		password = p
	}
	if password == "" {
		return fmt.Errorf("password is required, use --password or --password-stdin: %w", model.ErrNotValid)
	}

	authClient, err := c.rootCmd.AuthClient(c.rootCmd.APIURL)
	if err != nil {
		return err
	}

	svc, err := login.NewService(login.ServiceConfig{
		Authenticator: authClient,
		Store:         c.rootCmd.SessionStore(),
		APIURL:        c.rootCmd.APIURL,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	session, err := svc.Run(ctx, login.Request{Username: c.username, Password: password})
	if err != nil {
		return fmt.Errorf("could not log in: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintSession(*session); err != nil {
		return fmt.Errorf("could not print session: %w", err)
	}

	return nil
}

func readSecret(rootCmd *RootCommand) (string, error) {
	line, err := bufio.NewReader(rootCmd.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("could not read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
