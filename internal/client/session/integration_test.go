package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/services"
	"github.com/dmitrijs2005/yamaphone/internal/client/session"
	"github.com/dmitrijs2005/yamaphone/internal/client/store"
	"github.com/dmitrijs2005/yamaphone/internal/client/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	backend *testserver.Server
	store   *store.SQLiteStore
	gateway *client.Gateway
	manager *session.Manager
}

// boot wires a fresh process over dbPath, as cmd/yamaphone does.
func boot(t *testing.T, backend *testserver.Server, dbPath string) *stack {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := store.NewSQLiteStore(db)
	gw := client.NewGateway(backend.URL(), client.WithTimeout(5*time.Second))
	m := session.NewManager(st, client.NewAuthAPI(gw))
	gw.Bind(m)

	m.Resume(context.Background())
	return &stack{backend: backend, store: st, gateway: gw, manager: m}
}

func newBackend(t *testing.T) *testserver.Server {
	t.Helper()
	b := testserver.New()
	t.Cleanup(b.Close)
	return b
}

func loadToken(t *testing.T, s *store.SQLiteStore) string {
	t.Helper()
	v, err := s.Load(context.Background())
	require.NoError(t, err)
	return v
}

func TestEndToEnd_HappyLoginSurvivesRestart(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	dbPath := filepath.Join(t.TempDir(), "yamaphone.db")

	first := boot(t, backend, dbPath)
	require.Equal(t, session.Anonymous, first.manager.Phase())

	id, err := first.manager.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.False(t, first.manager.IsAdmin())

	token := loadToken(t, first.store)
	require.NotEmpty(t, token)
	assert.Equal(t, token, first.manager.Token())

	second := boot(t, backend, dbPath)
	assert.Equal(t, session.Authenticated, second.manager.Phase())
	assert.Equal(t, "alice", second.manager.Identity().Username)
	assert.Equal(t, token, second.manager.Token())
}

func TestEndToEnd_RejectedLogin(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	s := boot(t, backend, filepath.Join(t.TempDir(), "y.db"))

	_, err := s.manager.Login(context.Background(), "alice", "wrong")

	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, 401, client.StatusCode(err))
	assert.Equal(t, session.Anonymous, s.manager.Phase())
	assert.Empty(t, loadToken(t, s.store))
}

func TestEndToEnd_RegisterConflict(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	s := boot(t, backend, filepath.Join(t.TempDir(), "y.db"))

	_, err := s.manager.Register(context.Background(), "alice", "other")
	require.ErrorIs(t, err, client.ErrInvalidCredentials)

	id, err := s.manager.Register(context.Background(), "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", id.Username)
	assert.Equal(t, session.Authenticated, s.manager.Phase())
}

func TestEndToEnd_ExpiredCredentialResume(t *testing.T) {
	backend := newBackend(t)
	alice := backend.AddUser("alice", "secret", false)
	dbPath := filepath.Join(t.TempDir(), "y.db")

	seed := boot(t, backend, dbPath)
	require.NoError(t, seed.store.Save(context.Background(), backend.IssueToken(alice.ID, -time.Minute), time.Hour))

	s := boot(t, backend, dbPath)

	assert.Equal(t, session.Anonymous, s.manager.Phase())
	assert.Empty(t, loadToken(t, s.store))
}

func TestEndToEnd_HeaderInjection(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	s := boot(t, backend, filepath.Join(t.TempDir(), "y.db"))
	contacts := services.NewContactService(s.gateway, "")

	_, err := contacts.List(context.Background())
	require.ErrorIs(t, err, client.ErrInvalidCredentials)

	_, err = s.manager.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	_, err = contacts.List(context.Background())
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 3)
	assert.Empty(t, reqs[0].Authorization)
	assert.Empty(t, reqs[1].Authorization)
	assert.Equal(t, "Bearer "+s.manager.Token(), reqs[2].Authorization)
	for _, r := range reqs {
		assert.NotEmpty(t, r.RequestID)
	}
}

func TestEndToEnd_RevokedMidSession(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	s := boot(t, backend, filepath.Join(t.TempDir(), "y.db"))

	_, err := s.manager.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	backend.Revoke(s.manager.Token())

	_, err = services.NewCallService(s.gateway).List(context.Background())

	require.ErrorIs(t, err, client.ErrSessionInvalid)
	assert.Equal(t, session.Anonymous, s.manager.Phase())
	assert.Nil(t, s.manager.Identity())
	assert.Empty(t, loadToken(t, s.store))
}

func TestEndToEnd_LogoutIsIdempotent(t *testing.T) {
	backend := newBackend(t)
	backend.AddUser("alice", "secret", false)
	s := boot(t, backend, filepath.Join(t.TempDir(), "y.db"))

	_, err := s.manager.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	s.manager.Logout(context.Background())
	s.manager.Logout(context.Background())

	assert.Equal(t, session.Anonymous, s.manager.Phase())
	assert.Empty(t, loadToken(t, s.store))
}
