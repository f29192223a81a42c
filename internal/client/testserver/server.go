// Package testserver is an in-process stand-in for the yamaphone backend.
//
// It speaks the same REST/JSON dialect: bcrypt-hashed passwords, HS256
// bearer tokens, per-user SIP accounts, contacts and call history, and an
// admin-only user list. Tests use it to drive the gateway, the session
// manager and the CLI end to end.
package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

const requestIDHeader = "X-Request-ID"

// Recorded is a request as seen by the server.
type Recorded struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type user struct {
	models.User
	hash []byte
}

type contact struct {
	owner int64
	models.Contact
}

type call struct {
	owner int64
	models.CallRecord
}

type ctxKey struct{}

type Server struct {
	srv      *httptest.Server
	secret   []byte
	tokenTTL time.Duration

	mu       sync.Mutex
	nextID   int64
	users    map[int64]*user
	accounts map[int64]models.SipAccount
	contacts map[int64]contact
	calls    []call
	revoked  map[string]bool
	requests []Recorded
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens (24h by default).
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// New starts a server. Close must be called when done.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: 24 * time.Hour,
		users:    map[int64]*user{},
		accounts: map[int64]models.SipAccount{},
		contacts: map[int64]contact{},
		revoked:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = httptest.NewServer(s.router())
	return s
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Close() { s.srv.Close() }

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/sip-accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/sip-accounts", s.handleSaveAccount).Methods(http.MethodPost)
	api.HandleFunc("/sip-accounts/{id:[0-9]+}", s.handleSaveAccount).Methods(http.MethodPut)
	api.HandleFunc("/sip-accounts/{id:[0-9]+}", s.handleDeleteAccount).Methods(http.MethodDelete)
	api.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleSaveContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id:[0-9]+}", s.handleSaveContact).Methods(http.MethodPut)
	api.HandleFunc("/contacts/{id:[0-9]+}", s.handleDeleteContact).Methods(http.MethodDelete)
	api.HandleFunc("/call-history", s.handleListCalls).Methods(http.MethodGet)

	admin := api.PathPrefix("/users").Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("", s.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc("", s.handleCreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)

	return r
}

// ---- fixtures ----

// AddUser creates a user directly and returns its identity.
func (s *Server) AddUser(username, password string, admin bool) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _ := s.addUserLocked(username, password, admin)
	return identityOf(u)
}

// IssueToken mints a token for userID with an explicit lifetime, which may
// be negative to produce an already expired one.
func (s *Server) IssueToken(userID int64, ttl time.Duration) string {
	token, _ := generateToken(userID, s.secret, ttl)
	return token
}

// Revoke makes the server reject token from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	s.revoked[token] = true
	s.mu.Unlock()
}

// AddCall appends a call to the history of userID.
func (s *Server) AddCall(userID int64, c models.CallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.calls = append(s.calls, call{owner: userID, CallRecord: c})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) addUserLocked(username, password string, admin bool) (*user, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, false
		}
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &user{
		User: models.User{ID: s.id(), Username: username, IsAdmin: admin, CreatedAt: time.Now().UTC()},
		hash: hash,
	}
	s.users[u.ID] = u
	return u, true
}

func identityOf(u *user) models.Identity {
	return models.Identity{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// ---- middleware ----

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     requestID,
		})
		s.mu.Unlock()

		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := userIDFromToken(token, s.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		s.mu.Lock()
		u, exists := s.users[userID]
		revoked := s.revoked[token]
		s.mu.Unlock()
		if !exists || revoked {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, *u)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !caller(r).IsAdmin {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func caller(r *http.Request) user {
	u, _ := r.Context().Value(ctxKey{}).(user)
	return u
}

// ---- auth ----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.Username == in.Username {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.hash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.writeAuth(w, http.StatusOK, found)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decode(w, r, &in) {
		return
	}
	if in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	u, created := s.addUserLocked(in.Username, in.Password, false)
	s.mu.Unlock()

	if !created {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	s.writeAuth(w, http.StatusCreated, u)
}

func (s *Server) writeAuth(w http.ResponseWriter, status int, u *user) {
	token, err := generateToken(u.ID, s.secret, s.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := identityOf(u)
	writeJSON(w, status, models.AuthResponse{Token: token, User: &id})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	id := identityOf(&u)
	writeJSON(w, http.StatusOK, models.MeResponse{User: &id})
}

// ---- sip accounts ----

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	s.mu.Lock()
	out := make([]models.SipAccount, 0)
	for _, a := range s.accounts {
		if u.IsAdmin || a.UserID == u.ID {
			a.SipPassword = ""
			out = append(out, a)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	var in models.SipAccountInput
	if !decode(w, r, &in) {
		return
	}

	owner := u.ID
	if u.IsAdmin && in.UserID != 0 {
		owner = in.UserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.SipAccount{CreatedAt: time.Now().UTC()}
	status := http.StatusCreated
	if id, ok := pathID(r); ok {
		existing, found := s.accounts[id]
		if !found || (!u.IsAdmin && existing.UserID != u.ID) {
			writeError(w, http.StatusNotFound, "sip account not found")
			return
		}
		a, status = existing, http.StatusOK
	} else {
		a.ID = s.id()
	}

	a.SipURI = in.SipURI
	a.SipPassword = in.SipPassword
	a.WebsocketServer = in.WebsocketServer
	a.DisplayName = in.DisplayName
	a.AutoAnswer = in.AutoAnswer
	a.RegisterExpiration = in.RegisterExpiration
	a.UserID = owner
	s.accounts[a.ID] = a

	a.SipPassword = ""
	writeJSON(w, status, a)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, found := s.accounts[id]
	if !found || (!u.IsAdmin && a.UserID != u.ID) {
		writeError(w, http.StatusNotFound, "sip account not found")
		return
	}
	delete(s.accounts, id)
	w.WriteHeader(http.StatusNoContent)
}

// ---- contacts ----

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	s.mu.Lock()
	out := make([]models.Contact, 0)
	for _, c := range s.contacts {
		if c.owner == u.ID {
			out = append(out, c.Contact)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveContact(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	var in models.ContactInput
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := contact{owner: u.ID, Contact: models.Contact{CreatedAt: time.Now().UTC()}}
	status := http.StatusCreated
	if id, ok := pathID(r); ok {
		existing, found := s.contacts[id]
		if !found || existing.owner != u.ID {
			writeError(w, http.StatusNotFound, "contact not found")
			return
		}
		c, status = existing, http.StatusOK
	} else {
		c.ID = s.id()
	}

	c.Name = in.Name
	c.PhoneNumber = in.PhoneNumber
	c.IsFavorite = in.IsFavorite
	s.contacts[c.ID] = c
	writeJSON(w, status, c.Contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	u := caller(r)
	id, _ := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.contacts[id]
	if !found || c.owner != u.ID {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	delete(s.contacts, id)
	w.WriteHeader(http.StatusNoContent)
}

// ---- call history ----

func (s *Server) handleListCalls(w http.ResponseWriter, r *http.Request) {
	u := caller(r)

	s.mu.Lock()
	out := make([]models.CallRecord, 0)
	for _, c := range s.calls {
		if c.owner == u.ID {
			out = append(out, c.CallRecord)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// ---- users ----

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.User)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decode(w, r, &in) {
		return
	}
	if in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	u, created := s.addUserLocked(in.Username, in.Password, in.IsAdmin)
	s.mu.Unlock()

	if !created {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	writeJSON(w, http.StatusCreated, u.User)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	if id == caller(r).ID {
		writeError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.users[id]; !found {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	delete(s.users, id)
	w.WriteHeader(http.StatusNoContent)
}

// ---- helpers ----

func pathID(r *http.Request) (int64, bool) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
