// Package config loads the optional YAML profile of the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/taskline/taskline/internal/model"
)

const (
	// EnvPrefix is the environment prefix of the profile keys, TASKLINE_API_URL for api_url.
	EnvPrefix = "TASKLINE"

	defaultTimeout    = 30 * time.Second
	defaultGanttWidth = 60
	defaultBackend    = "http"
)

// Config is the CLI profile. Command line flags win over it.
type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Backend is http or memory.
	Backend string      `mapstructure:"backend"`
	Seed    string      `mapstructure:"seed"`
	Gantt   GanttConfig `mapstructure:"gantt"`
}

// GanttConfig customizes the Gantt output.
type GanttConfig struct {
	Width int `mapstructure:"width"`
	// RootOnly hides subtasks.
	RootOnly bool `mapstructure:"root_only"`
}

// Default returns the profile used when there is no file.
func Default() *Config {
	return &Config{
		Timeout: defaultTimeout,
		Backend: defaultBackend,
		Gantt:   GanttConfig{Width: defaultGanttWidth},
	}
}

// Load reads the YAML profile at path. A missing file returns model.ErrNotFound.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not stat config file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("backend", defaultBackend)
	v.SetDefault("gantt.width", defaultGanttWidth)
	v.SetDefault("gantt.root_only", false)
	v.SetDefault("api_url", "")
	v.SetDefault("seed", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the profile.
func (c Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api_url %q must be an absolute URL: %w", c.APIURL, model.ErrNotValid)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %w", model.ErrNotValid)
	}
	switch c.Backend {
	case "http", "memory":
	default:
		return fmt.Errorf("unknown backend %q (must be: http, memory): %w", c.Backend, model.ErrNotValid)
	}
	if c.Gantt.Width < 0 {
		return fmt.Errorf("gantt width must not be negative: %w", model.ErrNotValid)
	}
	return nil
}
