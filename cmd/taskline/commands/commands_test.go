package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandLoadConfig(t *testing.T) {
	tests := map[string]struct {
		profile    string
		args       []string
		expErr     bool
		expAPIURL  string
		expBackend string
		expTimeout time.Duration
		expWidth   int
	}{
		"Without profile the defaults should be used.": {
			expBackend: BackendHTTP,
			expTimeout: 30 * time.Second,
			expWidth:   60,
		},
		"The profile should fill what the flags don't set.": {
			profile:    "api_url: https://tasks.example.com/api\nbackend: memory\ntimeout: 5s\ngantt:\n  width: 80\n",
			expAPIURL:  "https://tasks.example.com/api",
			expBackend: BackendMemory,
			expTimeout: 5 * time.Second,
			expWidth:   80,
		},
		"The flags should win over the profile.": {
			profile:    "api_url: https://tasks.example.com/api\nbackend: memory\ntimeout: 5s\n",
			args:       []string{"--api-url", "https://other.example.com", "--backend", "http", "--timeout", "1m"},
			expAPIURL:  "https://other.example.com",
			expBackend: BackendHTTP,
			expTimeout: time.Minute,
			expWidth:   60,
		},
		"An invalid profile should fail.": {
			profile: "backend: carrier-pigeon\n",
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if test.profile != "" {
				require.NoError(t, os.WriteFile(path, []byte(test.profile), 0o600))
			}

			app := kingpin.New("test", "")
			root := NewRootCommand(app)
			_, err := app.Parse(append([]string{"--data-dir", dir}, test.args...))
			require.NoError(t, err)
			// Not given explicitly, so a missing file is not an error.
			root.ConfigPath = path

			err = root.LoadConfig()
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expAPIURL, root.APIURL)
			assert.Equal(t, test.expBackend, root.BackendType)
			assert.Equal(t, test.expTimeout, root.Timeout)
			assert.Equal(t, test.expWidth, root.Config.Gantt.Width)
		})
	}
}

func TestRootCommandLoadConfigExplicitMissingFile(t *testing.T) {
	app := kingpin.New("test", "")
	root := NewRootCommand(app)
	_, err := app.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)

	assert.Error(t, root.LoadConfig())
}

func TestRootCommandAuthClientRequiresAPIURL(t *testing.T) {
	root := &RootCommand{}

	_, err := root.AuthClient("")
	assert.Error(t, err)

	c, err := root.AuthClient("https://tasks.example.com/api")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestOptionalString(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expSet   bool
		expValue string
	}{
		"A missing flag should stay unset.": {},
		"An empty flag should be set to empty.": {
			args:   []string{"--start", ""},
			expSet: true,
		},
		"A flag should be set to its value.": {
			args:     []string{"--start", "2024-03-01"},
			expSet:   true,
			expValue: "2024-03-01",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var start optionalString
			app := kingpin.New("test", "")
			app.Flag("start", "").SetValue(&start)

			_, err := app.Parse(test.args)
			require.NoError(t, err)

			if !test.expSet {
				assert.Nil(t, start.value)
				return
			}
			require.NotNil(t, start.value)
			assert.Equal(t, test.expValue, *start.value)
		})
	}
}

func TestReadSecret(t *testing.T) {
	tests := map[string]struct {
		stdin  string
		expErr bool
		exp    string
	}{
		"A line should be read without its newline.": {
			stdin: "s3cret\r\n",
			exp:   "s3cret",
		},
		"Input without newline should be read.": {
			stdin: "s3cret",
			exp:   "s3cret",
		},
		"Empty input should fail.": {
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := readSecret(&RootCommand{Stdin: strings.NewReader(test.stdin)})
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}
