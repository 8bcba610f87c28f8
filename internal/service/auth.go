package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

const (
	// DefaultSessionTTL applies when the identity carries no expiry of its own.
	DefaultSessionTTL = 8 * time.Hour
	// DefaultQuickLoginTTL bounds how long quick-login flags stay bound to a client.
	DefaultQuickLoginTTL = 8 * time.Hour
)

var (
	// ErrSessionExpired is returned for sessions past their expiry. It matches ports.ErrSessionNotFound.
	ErrSessionExpired = fmt.Errorf("session expired: %w", ports.ErrSessionNotFound)
	// ErrQuickLoginDisabled is returned when quick-login is switched off.
	ErrQuickLoginDisabled = errors.New("quick login is disabled")
	// ErrInvalidCredentials is returned when no demo account matches.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenLoginUnavailable is returned when no ID token verifier is configured.
	ErrTokenLoginUnavailable = errors.New("token login is not configured")
)

// QuickLoginGrant names which override flag a demo account sets.
type QuickLoginGrant string

const (
	GrantSuperAdmin QuickLoginGrant = "superadmin"
	GrantAdmin      QuickLoginGrant = "admin"
)

// QuickLoginAccount is a configured demo account. PasswordHash is a bcrypt hash.
type QuickLoginAccount struct {
	Email        string
	PasswordHash string
	Grant        QuickLoginGrant
}

// Override returns the flags set by a successful login with this account.
func (a QuickLoginAccount) Override() domainauth.QuickLoginOverride {
	switch a.Grant {
	case GrantSuperAdmin:
		return domainauth.QuickLoginOverride{IsSuperAdmin: true}
	case GrantAdmin:
		return domainauth.QuickLoginOverride{IsAdmin: true}
	}
	return domainauth.QuickLoginOverride{}
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore

	// IDTokens verifies Firebase ID tokens exchanged for a session. Optional.
	IDTokens ports.TokenVerifier
	// Bearer verifies access tokens presented in the Authorization header. Optional.
	Bearer ports.TokenVerifier

	Overrides         ports.OverrideStore
	QuickLoginEnabled bool
	QuickLoginUsers   []QuickLoginAccount

	SessionTTL time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
}

// AuthService orchestrates authentication flows by coordinating providers, token
// verifiers, and session persistence. It is also the request identity resolver.
type AuthService struct {
	provider  ports.AuthProvider
	sessions  ports.SessionStore
	idTokens  ports.TokenVerifier
	bearer    ports.TokenVerifier
	overrides ports.OverrideStore

	quickLoginEnabled bool
	quickLoginUsers   []QuickLoginAccount

	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

var _ ports.IdentityResolver = (*AuthService)(nil)

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		provider:          opts.Provider,
		sessions:          opts.Sessions,
		idTokens:          opts.IDTokens,
		bearer:            opts.Bearer,
		overrides:         opts.Overrides,
		quickLoginEnabled: opts.QuickLoginEnabled,
		quickLoginUsers:   opts.QuickLoginUsers,
		sessionTTL:        ttl,
		logger:            logger.With("component", "auth_service"),
		now:               now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the session created by a successful login.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the authorization code for an identity and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	return s.startSession(ctx, identity)
}

// LoginWithToken verifies a Firebase ID token and persists a session for its subject.
func (s *AuthService) LoginWithToken(ctx context.Context, idToken string) (*CompleteLoginResult, error) {
	if s.idTokens == nil {
		return nil, ErrTokenLoginUnavailable
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, errors.New("id token is required")
	}

	identity, err := s.idTokens.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if identity.Provider == "" {
		identity.Provider = domainauth.ProviderFirebase
	}
	return s.startSession(ctx, identity)
}

func (s *AuthService) startSession(ctx context.Context, identity domainauth.Identity) (*CompleteLoginResult, error) {
	if identity.UserID == "" {
		return nil, errors.New("identity has no subject")
	}

	expiresAt := identity.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.sessionTTL)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Provider:  identity.Provider,
		ExpiresAt: expiresAt,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "session created",
		"user_id", session.UserID,
		"provider", string(session.Provider),
	)
	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID. Expired sessions are deleted and reported as ErrSessionExpired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Resolve returns the identity behind cred: the session cookie first, then the
// bearer token. It returns ports.ErrNoIdentity when neither yields a live identity.
func (s *AuthService) Resolve(ctx context.Context, cred domainauth.Credential) (domainauth.Identity, error) {
	if cred.SessionID != "" {
		session, err := s.GetSession(ctx, cred.SessionID)
		switch {
		case err == nil:
			return session.Identity(), nil
		case !errors.Is(err, ports.ErrSessionNotFound):
			return domainauth.Identity{}, err
		}
	}

	if cred.BearerToken != "" && s.bearer != nil {
		identity, err := s.bearer.Verify(ctx, cred.BearerToken)
		if err == nil && identity.UserID != "" {
			return identity, nil
		}
		s.logger.DebugContext(ctx, "bearer token rejected", "error", err)
	}

	return domainauth.Identity{}, ports.ErrNoIdentity
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// QuickLoginEnabled reports whether the demo quick-login path is available.
func (s *AuthService) QuickLoginEnabled() bool {
	return s.quickLoginEnabled && s.overrides != nil
}

// QuickLoginInput carries a demo login attempt. ClientID is the caller's current
// quick-login id, if any; its flags are dropped when the login succeeds.
type QuickLoginInput struct {
	ClientID string
	Email    string
	Password string
}

// QuickLoginResult names the client the flags were bound to.
type QuickLoginResult struct {
	ClientID string
	Override domainauth.QuickLoginOverride
}

// QuickLogin checks email and password against the demo accounts and, on a
// match, binds the account's override flag to a fresh client id. Other clients
// are unaffected.
func (s *AuthService) QuickLogin(ctx context.Context, in QuickLoginInput) (*QuickLoginResult, error) {
	if !s.QuickLoginEnabled() {
		return nil, ErrQuickLoginDisabled
	}

	account, ok := s.findQuickLoginAccount(in.Email)
	if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) != nil {
		s.logger.WarnContext(ctx, "quick login rejected", "email", in.Email)
		return nil, ErrInvalidCredentials
	}

	// A new id on every login, so a client id planted before login is never elevated.
	clientID := generateSessionID()
	override := account.Override()
	if err := s.overrides.Save(clientID, override); err != nil {
		return nil, fmt.Errorf("save quick login override: %w", err)
	}
	if in.ClientID != "" {
		if err := s.overrides.Save(in.ClientID, domainauth.QuickLoginOverride{}); err != nil {
			s.logger.WarnContext(ctx, "clear previous quick login override failed", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "quick login override set",
		"email", account.Email,
		"is_super_admin", override.IsSuperAdmin,
		"is_admin", override.IsAdmin,
	)
	return &QuickLoginResult{ClientID: clientID, Override: override}, nil
}

// QuickLogout clears the flags bound to clientID. An empty id is a no-op.
func (s *AuthService) QuickLogout(ctx context.Context, clientID string) error {
	if s.overrides == nil || clientID == "" {
		return nil
	}
	if err := s.overrides.Save(clientID, domainauth.QuickLoginOverride{}); err != nil {
		return fmt.Errorf("clear quick login override: %w", err)
	}
	s.logger.InfoContext(ctx, "quick login override cleared")
	return nil
}

// QuickLoginStatus returns the flags bound to clientID.
func (s *AuthService) QuickLoginStatus(clientID string) domainauth.QuickLoginOverride {
	if s.overrides == nil || clientID == "" {
		return domainauth.QuickLoginOverride{}
	}
	return s.overrides.Load(clientID)
}

func (s *AuthService) findQuickLoginAccount(email string) (QuickLoginAccount, bool) {
	email = strings.TrimSpace(email)
	for _, a := range s.quickLoginUsers {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return QuickLoginAccount{}, false
}

// generateSessionID creates a random session ID.
func generateSessionID() string {
	// UUIDs are URL-safe and carry 122 bits of randomness.
	return uuid.New().String()
}
