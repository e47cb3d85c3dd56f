package logout_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/app/logout"
	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/model"
)

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) Logout(_ context.Context, refresh string) error {
	f.revoked = append(f.revoked, refresh)
	return f.err
}

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		loggedIn   bool
		revokeErr  error
		expRevoked []string
		expResult  bool
	}{
		"A session should be revoked and deleted.": {
			loggedIn:   true,
			expRevoked: []string{"refresh-token"},
			expResult:  true,
		},

		"A revoke failure should still delete the local session.": {
			loggedIn:   true,
			revokeErr:  &model.BackendError{Message: "request failed"},
			expRevoked: []string{"refresh-token"},
			expResult:  true,
		},

		"No session should be a noop.": {
			expResult: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			store := auth.NewSessionStore(t.TempDir())
			if test.loggedIn {
				err := store.Save(auth.StoredSession{
					APIURL:      "https://tasks.example.com/api",
					Credentials: auth.Credentials{Access: "access", Refresh: "refresh-token", User: model.User{ID: "1", Username: "alice"}},
				})
				require.NoError(t, err)
			}
			revoker := &fakeRevoker{err: test.revokeErr}

			svc, err := logout.NewService(logout.ServiceConfig{Revoker: revoker, Store: store})
			require.NoError(t, err)

			got, err := svc.Run(context.TODO())
			require.NoError(t, err)

			assert.Equal(t, test.expResult, got)
			assert.Equal(t, test.expRevoked, revoker.revoked)
			_, err = store.Load()
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

type brokenStore struct{}

func (brokenStore) Load() (*auth.StoredSession, error) { return nil, fmt.Errorf("permission denied") }
func (brokenStore) Delete() error                      { return nil }

func TestService_RunUnreadableSession(t *testing.T) {
	svc, err := logout.NewService(logout.ServiceConfig{Revoker: &fakeRevoker{}, Store: brokenStore{}})
	require.NoError(t, err)

	_, err = svc.Run(context.TODO())
	assert.Error(t, err)
}
