package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider     = (*MockAuthProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.RoleDirectory    = (*StaticRoleDirectory)(nil)
	_ ports.OverrideStore    = (*MemoryOverrideStore)(nil)
	_ ports.IdentityResolver = (*StaticIdentityResolver)(nil)
	_ ports.Navigator        = (*RecordingNavigator)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

func defaultMockIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    "mock-user-1",
		FirstName: "Mock",
		LastName:  "Patient",
		Email:     "mock.patient@example.com",
		Provider:  domainauth.ProviderGoogle,
	}
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultMockIdentity(),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	state := fmt.Sprintf("%s-%d", orDefault(m.StatePrefix, "state"), n)
	nonce := fmt.Sprintf("%s-%d", orDefault(m.NoncePrefix, "nonce"), n)
	return orDefault(m.AuthURL, "https://mock-idp/auth"), state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = defaultMockIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StaticRoleDirectory serves roles from a fixed map and counts lookups.
// Users absent from Roles yield ports.ErrRoleNotFound; Err, when set, is returned for every lookup.
type StaticRoleDirectory struct {
	Roles map[string]domainauth.Role
	Err   error

	mu    sync.Mutex
	calls int
}

func (d *StaticRoleDirectory) RoleFor(_ context.Context, identity domainauth.Identity) (domainauth.Role, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.Err != nil {
		return domainauth.RoleNone, d.Err
	}
	role, ok := d.Roles[identity.UserID]
	if !ok {
		return domainauth.RoleNone, ports.ErrRoleNotFound
	}
	return role, nil
}

// Calls reports how many lookups were made.
func (d *StaticRoleDirectory) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// StaticIdentityResolver returns a fixed identity or error and counts calls.
// A zero Identity with a nil Err yields ports.ErrNoIdentity.
type StaticIdentityResolver struct {
	Identity domainauth.Identity
	Err      error

	mu    sync.Mutex
	calls int
}

func (r *StaticIdentityResolver) Resolve(_ context.Context, _ domainauth.Credential) (domainauth.Identity, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.Err != nil {
		return domainauth.Identity{}, r.Err
	}
	if r.Identity.UserID == "" {
		return domainauth.Identity{}, ports.ErrNoIdentity
	}
	return r.Identity, nil
}

// Calls reports how many resolutions were made.
func (r *StaticIdentityResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// MemoryOverrideStore holds quick-login flags per client in memory.
type MemoryOverrideStore struct {
	mu        sync.Mutex
	overrides map[string]domainauth.QuickLoginOverride
	SaveErr   error
}

// NewMemoryOverrideStore returns an empty store.
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{overrides: make(map[string]domainauth.QuickLoginOverride)}
}

func (s *MemoryOverrideStore) Load(clientID string) domainauth.QuickLoginOverride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overrides[clientID]
}

func (s *MemoryOverrideStore) Save(clientID string, o domainauth.QuickLoginOverride) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if clientID == "" {
		return ports.ErrOverrideClientRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !o.Active() {
		delete(s.overrides, clientID)
		return nil
	}
	s.overrides[clientID] = o
	return nil
}

// Len reports how many clients hold an override.
func (s *MemoryOverrideStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.overrides)
}

// RecordingNavigator records every Replace call.
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *RecordingNavigator) Replace(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Paths returns a copy of the recorded paths.
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}
