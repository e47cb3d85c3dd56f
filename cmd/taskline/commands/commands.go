package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/backend"
	backendmemory "github.com/taskline/taskline/internal/backend/memory"
	"github.com/taskline/taskline/internal/backend/rest"
	"github.com/taskline/taskline/internal/config"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/printer"
	storageio "github.com/taskline/taskline/internal/storage/io"
	"github.com/taskline/taskline/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// BackendHTTP talks to the REST API.
	BackendHTTP = "http"
	// BackendMemory keeps everything in process, optionally seeded from a fixture.
	BackendMemory = "memory"

	formatTable = "table"
	formatJSON  = "json"

	cacheDBFile = "cache.db"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug       bool
	NoLog       bool
	NoColor     bool
	LoggerType  string
	ConfigPath  string
	DataDir     string
	APIURL      string
	BackendType string
	Seed        string
	Timeout     time.Duration

	configPathSet bool
	backendSet    bool
	timeoutSet    bool

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
	Config *config.Config
	Now    func() time.Time
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{Now: time.Now}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and output colors.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), ".taskline")
	app.Flag("data-dir", "Directory of the session and the offline cache.").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("config", "Path to the YAML profile.").Default(filepath.Join(defaultDataDir, "config.yaml")).IsSetByUser(&c.configPathSet).StringVar(&c.ConfigPath)
	app.Flag("api-url", "Root URL of the task API, e.g. https://tasks.example.com/api.").StringVar(&c.APIURL)
	app.Flag("backend", "Backend implementation.").Default(BackendHTTP).IsSetByUser(&c.backendSet).EnumVar(&c.BackendType, BackendHTTP, BackendMemory)
	app.Flag("seed", "YAML fixture that seeds the memory backend.").StringVar(&c.Seed)
	app.Flag("timeout", "Timeout of every backend request.").Default("30s").IsSetByUser(&c.timeoutSet).DurationVar(&c.Timeout)

	return c
}

// LoadConfig loads the profile and merges it under the flags. A missing
// profile is only an error when its path was given explicitly.
func (r *RootCommand) LoadConfig() error {
	cfg, err := config.Load(r.ConfigPath)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) || r.configPathSet {
			return fmt.Errorf("could not load config: %w", err)
		}
		cfg = config.Default()
	}

	if r.APIURL == "" {
		r.APIURL = cfg.APIURL
	}
	if !r.backendSet {
		r.BackendType = cfg.Backend
	}
	if r.Seed == "" {
		r.Seed = cfg.Seed
	}
	if !r.timeoutSet {
		r.Timeout = cfg.Timeout
	}
	r.Config = cfg
	return nil
}

// SessionStore returns the store of the persisted login.
func (r *RootCommand) SessionStore() auth.SessionStore {
	return auth.NewSessionStore(r.DataDir)
}

// AuthClient returns a client for the token endpoints of apiURL.
func (r *RootCommand) AuthClient(apiURL string) (*auth.Client, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("api url is required, use --api-url or set api_url in %s: %w", r.ConfigPath, model.ErrNotValid)
	}
	return auth.NewClient(auth.ClientConfig{BaseURL: apiURL, Logger: r.Logger})
}

// Backend returns the configured backend with the session context of its user.
// source identifies the backend in the offline cache.
func (r *RootCommand) Backend(ctx context.Context) (b backend.Backend, session model.Session, source string, err error) {
	switch r.BackendType {
	case BackendMemory:
		b, source, err := r.memoryBackend(ctx)
		if err != nil {
			return nil, model.Session{}, "", err
		}
		return b, LocalSession(), source, nil
	default:
		return r.restBackend(ctx)
	}
}

// LocalSession is the session of the memory backend user, a manager.
func LocalSession() model.Session {
	return auth.NewSession(model.User{ID: "local", Username: "local", Groups: []string{auth.ManagerGroup}})
}

// memoryBackend returns an in process backend. Its state lives for a single
// invocation, the cache source is the seed path.
func (r *RootCommand) memoryBackend(ctx context.Context) (*backendmemory.Backend, string, error) {
	cfg := backendmemory.BackendConfig{Logger: r.Logger}
	source := BackendMemory
	if r.Seed != "" {
		abs, err := filepath.Abs(r.Seed)
		if err != nil {
			return nil, "", fmt.Errorf("invalid seed path: %w", err)
		}
		repo := storageio.NewFixtureYAMLRepository(os.DirFS(filepath.Dir(abs)))
		fixture, err := repo.GetFixture(ctx, filepath.Base(abs))
		if err != nil {
			return nil, "", fmt.Errorf("could not load seed: %w", err)
		}
		cfg.Employees = fixture.Employees
		cfg.Tasks = fixture.Tasks
		cfg.Dependencies = fixture.Dependencies
		source = abs
	}

	b, err := backendmemory.NewBackend(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("could not create memory backend: %w", err)
	}
	return b, source, nil
}

func (r *RootCommand) restBackend(ctx context.Context) (backend.Backend, model.Session, string, error) {
	store := r.SessionStore()
	stored, err := store.Load()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.Session{}, "", fmt.Errorf("not logged in, run 'taskline login' first: %w", err)
		}
		return nil, model.Session{}, "", err
	}

	apiURL := r.APIURL
	if apiURL == "" {
		apiURL = stored.APIURL
	}
	if stored.APIURL != "" && apiURL != stored.APIURL {
		return nil, model.Session{}, "", fmt.Errorf("logged in against %s, not %s: %w", stored.APIURL, apiURL, model.ErrNotValid)
	}

	authClient, err := r.AuthClient(apiURL)
	if err != nil {
		return nil, model.Session{}, "", err
	}

	ts, err := auth.NewTokenSource(ctx, auth.TokenSourceConfig{
		Refresher: authClient,
		Access:    stored.Credentials.Access,
		Refresh:   stored.Credentials.Refresh,
		OnRefresh: func(access string) {
			if err := store.UpdateAccess(access); err != nil {
				r.Logger.Warningf("Could not persist refreshed token: %s", err)
			}
		},
	})
	if err != nil {
		return nil, model.Session{}, "", fmt.Errorf("could not create token source: %w", err)
	}

	httpClient := auth.HTTPClient(ctx, ts)
	httpClient.Timeout = r.Timeout

	client, err := rest.NewClient(rest.ClientConfig{
		BaseURL:    apiURL,
		HTTPClient: httpClient,
		Logger:     r.Logger,
	})
	if err != nil {
		return nil, model.Session{}, "", fmt.Errorf("could not create backend client: %w", err)
	}

	return client, auth.NewSession(stored.Credentials.User), apiURL, nil
}

// Cache opens the offline snapshot cache.
func (r *RootCommand) Cache(ctx context.Context) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: filepath.Join(r.DataDir, cacheDBFile),
		Logger: r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open cache: %w", err)
	}
	return repo, nil
}

// Printer returns the printer of an output format.
func (r *RootCommand) Printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}

	width := 0
	if r.Config != nil {
		width = r.Config.Gantt.Width
	}
	return printer.NewTablePrinter(printer.TablePrinterConfig{
		Writer:     r.Stdout,
		GanttWidth: width,
		NoColor:    r.NoColor,
		Now:        r.Now,
	})
}

func formatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// optionalString binds a flag that distinguishes "not given" from an empty value.
type optionalString struct {
	value *string
}

func (o *optionalString) Set(s string) error {
	o.value = &s
	return nil
}

func (o *optionalString) String() string {
	if o.value == nil {
		return ""
	}
	return *o.value
}
