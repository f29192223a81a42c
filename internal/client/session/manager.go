// Package session owns the console's session state: who the caller is, the
// credential proving it, and the phase of the Resuming/Anonymous/Authenticated
// state machine. The Manager is the only writer of that state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/dmitrijs2005/yamaphone/internal/client/store"
	"github.com/dmitrijs2005/yamaphone/internal/logging"
)

var (
	// ErrBusy rejects a login or registration while another one is in flight.
	ErrBusy = errors.New("authentication already in progress")
	// ErrNotAnonymous rejects a login or registration outside the Anonymous phase.
	ErrNotAnonymous = errors.New("session is not anonymous")
)

// Authenticator is the backend side of authentication.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Me(ctx context.Context, token string) (*models.Identity, error)
}

// Manager is the session state machine.
//
// Identity is held if and only if the phase is Authenticated. No lock is
// held across network calls. Store writes are serialized with the phase
// change they belong to, so memory and disk agree after every operation.
type Manager struct {
	store  store.Store
	auth   Authenticator
	logger logging.Logger
	ttl    time.Duration

	busy       atomic.Bool
	resumeOnce sync.Once
	ready      chan struct{}

	// opMu orders store writes together with their transition.
	opMu sync.Mutex

	mu       sync.RWMutex
	phase    Phase
	token    string
	identity *models.Identity
	// gen counts transitions; resume drops its result if it moved.
	gen uint64
}

var _ client.SessionBinding = (*Manager)(nil)

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTTL sets the lifetime of credentials persisted after login.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// NewManager returns a Manager in the Resuming phase.
func NewManager(s store.Store, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store:  s,
		auth:   auth,
		logger: logging.Discard(),
		ttl:    store.DefaultTTL,
		ready:  make(chan struct{}),
		phase:  Resuming,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resume re-establishes the session from the stored credential. Only the
// first call does anything; later calls return immediately.
//
// Resume never fails: a missing, unreadable or rejected credential leaves
// the session Anonymous, and a rejected one is removed from the store.
// If the session changed while Resume was in flight (a Logout or a Login),
// its outcome is discarded. Ready is closed when Resume returns.
func (m *Manager) Resume(ctx context.Context) {
	m.resumeOnce.Do(func() {
		defer close(m.ready)
		m.resume(ctx)
	})
}

func (m *Manager) resume(ctx context.Context) {
	gen := m.generation()

	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "reading stored credential failed", "error", err)
		m.settle(ctx, gen, false, Anonymous, "", nil)
		return
	}
	if token == "" {
		m.settle(ctx, gen, false, Anonymous, "", nil)
		return
	}

	identity, err := m.auth.Me(ctx, token)
	if err == nil && identity == nil {
		err = client.ErrSessionInvalid
	}
	if err != nil {
		m.logger.Warn(ctx, "stored credential rejected", "error", err)
		m.settle(ctx, gen, true, Anonymous, "", nil)
		return
	}
	m.settle(ctx, gen, false, Authenticated, token, identity)
}

// settle applies the outcome of resume unless another transition happened
// since gen was read.
func (m *Manager) settle(ctx context.Context, gen uint64, drop bool, to Phase, token string, identity *models.Identity) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.generation() != gen {
		m.logger.Debug(ctx, "session changed during resume, discarding result")
		return
	}
	if drop {
		m.clearStore(ctx)
	}
	m.transition(ctx, to, token, identity)
}

// Ready is closed once Resume has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Login authenticates with username and password. On failure the session
// and the stored credential are left untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	return m.authenticate(ctx, username, password, m.auth.Login)
}

// Register creates an account and authenticates with it.
func (m *Manager) Register(ctx context.Context, username, password string) (*models.Identity, error) {
	return m.authenticate(ctx, username, password, m.auth.Register)
}

type authFunc func(ctx context.Context, username, password string) (*models.AuthResponse, error)

func (m *Manager) authenticate(ctx context.Context, username, password string, call authFunc) (*models.Identity, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer m.busy.Store(false)

	if err := client.ValidateCredentials(models.Credentials{Username: username, Password: password}); err != nil {
		return nil, err
	}
	if p := m.Phase(); p != Anonymous {
		return nil, fmt.Errorf("%w: %s", ErrNotAnonymous, p)
	}

	resp, err := call(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("%w: incomplete authentication response", client.ErrTransport)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if p := m.Phase(); p != Anonymous {
		return nil, fmt.Errorf("%w: %s", ErrNotAnonymous, p)
	}
	if err := m.store.Save(ctx, resp.Token, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	m.transition(ctx, Authenticated, resp.Token, resp.User)
	return m.Identity(), nil
}

// Logout drops the session and the stored credential and leaves the
// session Anonymous, also while Resuming. It is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.clearStore(ctx)
	m.transition(ctx, Anonymous, "", nil)
}

// Invalidate handles the backend rejecting token mid-session. It behaves
// like Logout, but only while Authenticated with that same token; a
// rejection of an older credential leaves the current session alone.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	current := m.phase == Authenticated && token != "" && m.token == token
	m.mu.RUnlock()
	if !current {
		return
	}

	m.logger.Warn(ctx, "credential rejected by backend, ending session")
	m.clearStore(ctx)
	m.transition(ctx, Anonymous, "", nil)
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn(ctx, "clearing stored credential failed", "error", err)
	}
}

func (m *Manager) transition(ctx context.Context, to Phase, token string, identity *models.Identity) {
	if to != Authenticated {
		token, identity = "", nil
	}

	m.mu.Lock()
	from := m.phase
	m.phase, m.token, m.identity = to, token, identity
	m.gen++
	m.mu.Unlock()

	if from == to {
		return
	}
	args := []any{"from", from.String(), "to", to.String()}
	if identity != nil {
		args = append(args, "user", identity.Username)
	}
	m.logger.Info(ctx, "session transition", args...)
}

func (m *Manager) generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Identity returns a copy of the current identity, or nil unless Authenticated.
func (m *Manager) Identity() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// Token returns the credential of an Authenticated session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	return m.Phase() == Authenticated
}

func (m *Manager) IsAdmin() bool {
	id := m.Identity()
	return id != nil && id.IsAdmin
}
