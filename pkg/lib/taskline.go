package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/taskline/taskline/internal/app/login"
	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/backend"
	backendmemory "github.com/taskline/taskline/internal/backend/memory"
	"github.com/taskline/taskline/internal/backend/rest"
	"github.com/taskline/taskline/internal/log"
	"github.com/taskline/taskline/internal/model"
	"github.com/taskline/taskline/internal/storage"
	storageio "github.com/taskline/taskline/internal/storage/io"
	"github.com/taskline/taskline/internal/storage/sqlite"
)

const (
	defaultDataDir = ".taskline"
	defaultDBFile  = "cache.db"
	defaultTimeout = 30 * time.Second
	memorySource   = "memory"
)

// Config configures the SDK client.
//
// For [BackendHTTP] either Username and Password are set, to log in when the
// client is created, or a session stored by a previous login (the CLI `taskline
// login` included) is reused from DataDir.
type Config struct {
	// Backend selects the backend implementation.
	// Default: [BackendHTTP].
	Backend BackendType

	// APIURL is the root of the task API, e.g. https://tasks.example.com/api.
	// Default: the URL of the stored session.
	APIURL string

	// Username and Password log in when set.
	Username string
	Password string

	// DataDir keeps the session and the offline cache.
	// Default: ~/.taskline.
	DataDir string

	// DisableCache skips storing fetched tasks, offline timelines fail then.
	DisableCache bool

	// Timeout applies to every backend request.
	// Default: 30s.
	Timeout time.Duration

	// Seed is the content of a [BackendMemory] backend.
	Seed *Seed

	// SeedFile is a YAML fixture loaded into a [BackendMemory] backend, it
	// can't be combined with Seed.
	SeedFile string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Now is the clock used for due dates and overdue tasks.
	// Default: time.Now.
	Now func() time.Time
}

func (c *Config) defaults() error {
	if c.Backend == "" {
		c.Backend = BackendHTTP
	}
	switch c.Backend {
	case BackendHTTP, BackendMemory:
	default:
		return fmt.Errorf("unsupported backend type %q: %w", c.Backend, ErrNotValid)
	}

	if c.Seed != nil && c.SeedFile != "" {
		return fmt.Errorf("seed and seed file can't be combined: %w", ErrNotValid)
	}
	if c.Backend != BackendMemory && (c.Seed != nil || c.SeedFile != "") {
		return fmt.Errorf("seeds are only supported by the memory backend: %w", ErrNotValid)
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("username and password go together: %w", ErrNotValid)
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, defaultDataDir)
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	return nil
}

// Client is the main SDK entry point to read and edit the task timeline.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, an [EditSession] is not shared between
// goroutines unless documented.
type Client struct {
	backend backend.Backend
	session model.Session
	cache   storage.SnapshotRepository
	source  string
	logger  log.Logger
	now     func() time.Time
	closeFn func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the cache
// database. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{APIURL: "https://tasks.example.com/api"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		logger: cfg.Logger,
		now:    cfg.Now,
	}

	var err error
	switch cfg.Backend {
	case BackendMemory:
		err = c.setupMemory(ctx, cfg)
	default:
		err = c.setupHTTP(ctx, cfg)
	}
	if err != nil {
		return nil, mapError(err)
	}

	if !cfg.DisableCache {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: filepath.Join(cfg.DataDir, defaultDBFile),
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create cache: %w", err)
		}
		c.cache = repo
		c.closeFn = repo.Close
	}

	return c, nil
}

func (c *Client) setupMemory(ctx context.Context, cfg Config) error {
	bcfg := backendmemory.BackendConfig{Logger: cfg.Logger}
	bcfg.Employees, bcfg.Tasks, bcfg.Dependencies = toInternalSeed(cfg.Seed)
	c.source = memorySource

	if cfg.SeedFile != "" {
		abs, err := filepath.Abs(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("invalid seed file: %w", err)
		}
		repo := storageio.NewFixtureYAMLRepository(os.DirFS(filepath.Dir(abs)))
		fixture, err := repo.GetFixture(ctx, filepath.Base(abs))
		if err != nil {
			return fmt.Errorf("could not load seed file: %w: %w", err, model.ErrNotValid)
		}
		bcfg.Employees, bcfg.Tasks, bcfg.Dependencies = fixture.Employees, fixture.Tasks, fixture.Dependencies
		c.source = abs
	}

	b, err := backendmemory.NewBackend(bcfg)
	if err != nil {
		return fmt.Errorf("could not create memory backend: %w", err)
	}

	c.backend = b
	c.session = auth.NewSession(model.User{ID: "local", Username: "local", Groups: []string{auth.ManagerGroup}})
	return nil
}

func (c *Client) setupHTTP(ctx context.Context, cfg Config) error {
	store := auth.NewSessionStore(cfg.DataDir)

	apiURL := cfg.APIURL
	if cfg.Username != "" {
		if apiURL == "" {
			return fmt.Errorf("api url is required to log in: %w", model.ErrNotValid)
		}
		authClient, err := auth.NewClient(auth.ClientConfig{BaseURL: apiURL, Logger: cfg.Logger})
		if err != nil {
			return fmt.Errorf("could not create auth client: %w: %w", err, model.ErrNotValid)
		}
		svc, err := login.NewService(login.ServiceConfig{
			Authenticator: authClient,
			Store:         store,
			APIURL:        apiURL,
			Logger:        cfg.Logger,
		})
		if err != nil {
			return fmt.Errorf("could not create service: %w", err)
		}
		if _, err := svc.Run(ctx, login.Request{Username: cfg.Username, Password: cfg.Password}); err != nil {
			return err
		}
	}

	stored, err := store.Load()
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("not logged in: %w", err)
		}
		return err
	}
	if apiURL == "" {
		apiURL = stored.APIURL
	}
	if stored.APIURL != apiURL {
		return fmt.Errorf("session belongs to %s, not %s: %w", stored.APIURL, apiURL, model.ErrNotValid)
	}

	authClient, err := auth.NewClient(auth.ClientConfig{BaseURL: apiURL, Logger: cfg.Logger})
	if err != nil {
		return fmt.Errorf("could not create auth client: %w: %w", err, model.ErrNotValid)
	}

	// The token source outlives New, it refreshes during later calls.
	ts, err := auth.NewTokenSource(context.WithoutCancel(ctx), auth.TokenSourceConfig{
		Refresher: authClient,
		Access:    stored.Credentials.Access,
		Refresh:   stored.Credentials.Refresh,
		Now:       cfg.Now,
		OnRefresh: func(access string) {
			if err := store.UpdateAccess(access); err != nil {
				cfg.Logger.Warningf("Could not persist refreshed token: %s", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("could not create token source: %w", err)
	}

	httpClient := auth.HTTPClient(context.WithoutCancel(ctx), ts)
	httpClient.Timeout = cfg.Timeout

	client, err := rest.NewClient(rest.ClientConfig{
		BaseURL:    apiURL,
		HTTPClient: httpClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create backend client: %w", err)
	}

	c.backend = client
	c.session = auth.NewSession(stored.Credentials.User)
	c.source = apiURL
	return nil
}

// Close releases resources held by the client, including the cache database.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// Session returns the identity the client acts as.
func (c *Client) Session() Session {
	return fromInternalSession(c.session)
}
