package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the browser login flow.
type AuthMode string

const (
	// AuthModeOAuth uses Google OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains Google OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL" envDefault:"https://accounts.google.com"`
}

// FirebaseConfig enables the Firebase ID token bridge when ProjectID is set.
type FirebaseConfig struct {
	ProjectID string `env:"PROJECT_ID"`
}

// Enabled reports whether Firebase tokens are accepted.
func (c FirebaseConfig) Enabled() bool { return c.ProjectID != "" }

// SupabaseConfig enables Supabase bearer tokens when JWTSecret is set.
type SupabaseConfig struct {
	URL       string `env:"URL"`
	JWTSecret string `env:"JWT_SECRET"`
	Audience  string `env:"JWT_AUDIENCE" envDefault:"authenticated"`
}

// Enabled reports whether Supabase bearer tokens are accepted.
func (c SupabaseConfig) Enabled() bool { return c.JWTSecret != "" }

// Issuer returns the token issuer Supabase stamps on access tokens.
func (c SupabaseConfig) Issuer() string {
	if c.URL == "" {
		return ""
	}
	return strings.TrimRight(c.URL, "/") + "/auth/v1"
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID    string `env:"USER_ID"    envDefault:"dev-user"`
	Email     string `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"User"`
	// Role is served for the dev user without a user_roles row. Empty defers to the database.
	Role string `env:"ROLE" envDefault:"admin"`
}

// QuickLoginStore selects where quick-login flags are kept.
type QuickLoginStore string

const (
	QuickLoginStoreMemory QuickLoginStore = "memory"
	QuickLoginStoreFile   QuickLoginStore = "file"
	QuickLoginStoreRedis  QuickLoginStore = "redis"
)

// QuickLoginConfig controls the demo quick-login accounts. Password hashes are bcrypt.
type QuickLoginConfig struct {
	Enabled bool            `env:"ENABLED" envDefault:"false"`
	Store   QuickLoginStore `env:"STORE"   envDefault:"memory"`
	File    string          `env:"FILE"    envDefault:"quick-login.yaml"`

	SuperAdminEmail        string `env:"SUPERADMIN_EMAIL"`
	SuperAdminPasswordHash string `env:"SUPERADMIN_PASSWORD_HASH"`
	AdminEmail             string `env:"ADMIN_EMAIL"`
	AdminPasswordHash      string `env:"ADMIN_PASSWORD_HASH"`
}

// Sanitize normalizes the store kind and account emails.
func (c *QuickLoginConfig) Sanitize() {
	switch QuickLoginStore(strings.ToLower(strings.TrimSpace(string(c.Store)))) {
	case QuickLoginStoreFile:
		c.Store = QuickLoginStoreFile
	case QuickLoginStoreRedis:
		c.Store = QuickLoginStoreRedis
	default:
		c.Store = QuickLoginStoreMemory
	}
	c.SuperAdminEmail = strings.ToLower(strings.TrimSpace(c.SuperAdminEmail))
	c.AdminEmail = strings.ToLower(strings.TrimSpace(c.AdminEmail))
	c.File = strings.TrimSpace(c.File)
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which browser login provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// SessionTTL bounds sessions whose provider sets no expiry.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"8h"`

	// LoginPath is where unauthenticated browsers are sent.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	OAuth      OAuthConfig      `envPrefix:"OAUTH_"`
	Firebase   FirebaseConfig   `envPrefix:"FIREBASE_"`
	Supabase   SupabaseConfig   `envPrefix:"SUPABASE_"`
	DevAuth    DevAuthConfig    `envPrefix:"DEV_AUTH_"`
	QuickLogin QuickLoginConfig `envPrefix:"QUICK_LOGIN_"`
}

// Sanitize applies defaults to auth configuration.
func (c *AuthConfig) Sanitize() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 8 * time.Hour
	}
	c.LoginPath = strings.TrimSpace(c.LoginPath)
	if !strings.HasPrefix(c.LoginPath, "/") {
		c.LoginPath = "/login"
	}
	c.QuickLogin.Sanitize()
}
