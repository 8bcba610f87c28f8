package ports

// Package ports defines interfaces (hexagonal ports) for auth and access behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
)

var (
	// ErrNoIdentity is returned by an IdentityResolver when the request carries no live session.
	ErrNoIdentity = errors.New("no authenticated identity")
	// ErrRoleNotFound is returned by a RoleDirectory when the identity has no role record.
	ErrRoleNotFound = errors.New("role not found")
	// ErrSessionNotFound is returned by a SessionStore for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrOverrideClientRequired is returned by an OverrideStore saved without a client id.
	ErrOverrideClientRequired = errors.New("quick login client id is required")
)

// IdentityResolver resolves the current identity for a request credential.
// It returns ErrNoIdentity when no session exists; any other error is a transport failure.
type IdentityResolver interface {
	Resolve(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error)
}

// RoleDirectory maps an identity to its single assigned role.
type RoleDirectory interface {
	RoleFor(ctx context.Context, identity domainauth.Identity) (domainauth.Role, error)
}

// RoleAssignment is a single user_roles record.
type RoleAssignment struct {
	UserID    string          `json:"user_id"`
	Role      domainauth.Role `json:"role"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RoleAssigner administers role records.
type RoleAssigner interface {
	Assign(ctx context.Context, userID string, role domainauth.Role) (RoleAssignment, error)
	Revoke(ctx context.Context, userID string) error
	List(ctx context.Context, limit, offset int) ([]RoleAssignment, error)
}

// OverrideStore persists quick-login flags per client. Load is synchronous and
// never fails; an unknown client or an unreadable store yields the zero override.
// Saving the zero override removes the client's entry.
type OverrideStore interface {
	Load(clientID string) domainauth.QuickLoginOverride
	Save(clientID string, o domainauth.QuickLoginOverride) error
}

// Navigator performs a non-history-preserving redirect.
type Navigator interface {
	Replace(path string)
}

// DecisionRecord describes one completed access evaluation for metrics.
type DecisionRecord struct {
	Decision       domainauth.Decision
	RequiredRole   domainauth.Role
	OverrideActive bool
	Duration       time.Duration
}

// DecisionRecorder receives completed access evaluations.
type DecisionRecorder interface {
	RecordDecision(rec DecisionRecord)
}

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an interactive authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// TokenVerifier verifies a bearer or ID token issued by a third party.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
