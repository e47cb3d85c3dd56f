package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/taskline/taskline/internal/model"
)

// SessionFile is the file name of the persisted session under the data dir.
const SessionFile = "session.yaml"

type storedUser struct {
	ID       string   `yaml:"id"`
	Username string   `yaml:"username"`
	Email    string   `yaml:"email,omitempty"`
	Groups   []string `yaml:"groups,omitempty"`
}

type storedSession struct {
	APIURL  string     `yaml:"api_url"`
	Access  string     `yaml:"access"`
	Refresh string     `yaml:"refresh"`
	User    storedUser `yaml:"user"`
}

// StoredSession is a persisted login.
type StoredSession struct {
	APIURL      string
	Credentials Credentials
}

// SessionStore persists the login credentials as YAML readable only by the owner.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store that keeps the session under dataDir.
func NewSessionStore(dataDir string) SessionStore {
	return SessionStore{path: filepath.Join(dataDir, SessionFile)}
}

// Path returns the session file path.
func (s SessionStore) Path() string { return s.path }

// Save persists the session, replacing any previous one.
func (s SessionStore) Save(sess StoredSession) error {
	st := storedSession{
		APIURL:  sess.APIURL,
		Access:  sess.Credentials.Access,
		Refresh: sess.Credentials.Refresh,
		User: storedUser{
			ID:       sess.Credentials.User.ID,
			Username: sess.Credentials.User.Username,
			Email:    sess.Credentials.User.Email,
			Groups:   sess.Credentials.User.Groups,
		},
	}

	b, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("could not create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("could not write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("could not write session: %w", err)
	}
	return nil
}

// Load returns the persisted session, model.ErrNotFound when there is none.
func (s SessionStore) Load() (*StoredSession, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("not logged in: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not read session: %w", err)
	}

	var st storedSession
	if err := yaml.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("could not decode session: %w", err)
	}

	return &StoredSession{
		APIURL: st.APIURL,
		Credentials: Credentials{
			Access:  st.Access,
			Refresh: st.Refresh,
			User: model.User{
				ID:       st.User.ID,
				Username: st.User.Username,
				Email:    st.User.Email,
				Groups:   st.User.Groups,
			},
		},
	}, nil
}

// UpdateAccess replaces the stored access token.
func (s SessionStore) UpdateAccess(access string) error {
	sess, err := s.Load()
	if err != nil {
		return err
	}
	sess.Credentials.Access = access
	return s.Save(*sess)
}

// Delete removes the session, missing sessions are not an error.
func (s SessionStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not delete session: %w", err)
	}
	return nil
}
