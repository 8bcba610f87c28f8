package auth

// Package auth contains domain-level types for authentication, sessions, and access decisions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization tier.
// Keep string form for easy persistence, cookies, and the user_roles table.
type Role string

const (
	// RoleNone is the absence of an assigned role. It carries no elevated privilege.
	RoleNone      Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles returns every assignable role in a stable order.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	case RoleNone:
		return false
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// ParseRole converts s into a Role. Matching ignores case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RoleNone, fmt.Errorf("invalid role %q (valid options: user, moderator, admin)", s)
	}
	return r, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so roles can be parsed from env and JSON.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Provider names the mechanism that authenticated an identity.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFirebase Provider = "firebase"
	ProviderSupabase Provider = "supabase"
	ProviderDev      Provider = "dev"
)

// Identity represents the authenticated principal.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (Supabase auth.users id or IdP subject)
	Email     string
	FirstName string
	LastName  string
	Provider  Provider
	ExpiresAt time.Time // absolute expiry from the IdP token or session
}

// DisplayName returns a human-friendly name, falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name != "" {
		return name
	}
	return i.Email
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Provider  Provider  `json:"provider"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity projects the session onto the identity it was created for.
func (s Session) Identity() Identity {
	return Identity{
		UserID:    s.UserID,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Provider:  s.Provider,
		ExpiresAt: s.ExpiresAt,
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Fixed keys under which the quick-login flags are persisted.
const (
	OverrideKeySuperAdmin = "isSuperAdmin"
	OverrideKeyAdmin      = "isAdmin"
)

// QuickLoginOverride is the pair of bypass flags set by the demo quick-login
// path. Flags belong to the one client that logged in, identified by its
// quick-login client id.
type QuickLoginOverride struct {
	IsSuperAdmin bool `json:"isSuperAdmin" yaml:"isSuperAdmin"`
	IsAdmin      bool `json:"isAdmin"      yaml:"isAdmin"`
}

// Active reports whether either flag is set.
func (o QuickLoginOverride) Active() bool { return o.IsSuperAdmin || o.IsAdmin }

// Credential carries what the transport extracted from a request so the
// session layer can resolve the current identity. QuickLoginID selects the
// client's quick-login override.
type Credential struct {
	SessionID    string
	BearerToken  string
	QuickLoginID string
}

// Empty reports whether no credential material was presented.
func (c Credential) Empty() bool {
	return c.SessionID == "" && c.BearerToken == "" && c.QuickLoginID == ""
}

// DefaultRedirectTarget is where unauthenticated actors are sent.
const DefaultRedirectTarget = "/login"

// AccessRequest describes a protected area.
type AccessRequest struct {
	RequiredRole   Role
	RedirectTarget string
	Credential     Credential
}

// Normalize applies defaults: RequiredRole user and RedirectTarget /login.
func (r AccessRequest) Normalize() AccessRequest {
	if r.RequiredRole == RoleNone {
		r.RequiredRole = RoleUser
	}
	if strings.TrimSpace(r.RedirectTarget) == "" {
		r.RedirectTarget = DefaultRedirectTarget
	}
	return r
}

// Decision is the outcome of evaluating an AccessRequest.
type Decision int

const (
	// DecisionPending is the sole initial state.
	DecisionPending Decision = iota
	DecisionDeniedUnauthenticated
	DecisionDeniedUnauthorized
	DecisionGranted
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionDeniedUnauthenticated:
		return "denied_unauthenticated"
	case DecisionDeniedUnauthorized:
		return "denied_unauthorized"
	case DecisionGranted:
		return "granted"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Terminal reports whether the decision ends an evaluation.
func (d Decision) Terminal() bool {
	switch d {
	case DecisionDeniedUnauthenticated, DecisionDeniedUnauthorized, DecisionGranted:
		return true
	case DecisionPending:
		return false
	}
	return false
}

// MarshalText renders the decision by name in JSON payloads.
func (d Decision) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
