package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/taskline/taskline/cmd/taskline/commands"
	"github.com/taskline/taskline/internal/log"
	loglogrus "github.com/taskline/taskline/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("taskline", "Task timeline and Gantt client.")
	app.Version(Version)
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	loginCmd := commands.NewLoginCommand(rootCmd, app)
	logoutCmd := commands.NewLogoutCommand(rootCmd, app)
	whoamiCmd := commands.NewWhoamiCommand(rootCmd, app)
	ganttCmd := commands.NewGanttCommand(rootCmd, app)
	tasksCmd := commands.NewTasksCommand(rootCmd, app)
	workloadCmd := commands.NewWorkloadCommand(rootCmd, app)
	importantCmd := commands.NewImportantCommand(rootCmd, app)

	taskCmd := commands.NewTaskCommand(app)
	taskShowCmd := commands.NewTaskShowCommand(rootCmd, taskCmd)
	taskCreateCmd := commands.NewTaskCreateCommand(rootCmd, taskCmd)
	taskEditCmd := commands.NewTaskEditCommand(rootCmd, taskCmd)
	taskStatusCmd := commands.NewTaskStatusCommand(rootCmd, taskCmd)
	taskRmCmd := commands.NewTaskRmCommand(rootCmd, taskCmd)

	depCmd := commands.NewDepCommand(app)
	depListCmd := commands.NewDepListCommand(rootCmd, depCmd)
	depCreateCmd := commands.NewDepCreateCommand(rootCmd, depCmd)
	depRmCmd := commands.NewDepRmCommand(rootCmd, depCmd)

	cacheCmd := commands.NewCacheCommand(app)
	cacheListCmd := commands.NewCacheListCommand(rootCmd, cacheCmd)
	cacheRmCmd := commands.NewCacheRmCommand(rootCmd, cacheCmd)

	cmds := map[string]commands.Command{
		loginCmd.Name():      loginCmd,
		logoutCmd.Name():     logoutCmd,
		whoamiCmd.Name():     whoamiCmd,
		ganttCmd.Name():      ganttCmd,
		tasksCmd.Name():      tasksCmd,
		workloadCmd.Name():   workloadCmd,
		importantCmd.Name():  importantCmd,
		taskShowCmd.Name():   taskShowCmd,
		taskCreateCmd.Name(): taskCreateCmd,
		taskEditCmd.Name():   taskEditCmd,
		taskStatusCmd.Name(): taskStatusCmd,
		taskRmCmd.Name():     taskRmCmd,
		depListCmd.Name():    depListCmd,
		depCreateCmd.Name():  depCreateCmd,
		depRmCmd.Name():      depRmCmd,
		cacheListCmd.Name():  cacheListCmd,
		cacheRmCmd.Name():    cacheRmCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Printer commands write tables and JSON to stdout, logs would only add
	// noise. Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"whoami":     true,
		"gantt":      true,
		"tasks":      true,
		"workload":   true,
		"important":  true,
		"task show":  true,
		"dep list":   true,
		"cache list": true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd).WithValues(log.Kv{"cmd": cmdName})

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Tables and JSON own stdout.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
