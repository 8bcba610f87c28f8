package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/authroles"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/devauth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/oidc"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/quicklogin"
	redisadapter "github.com/thankyoudoc/thankyoudoc-api/internal/adapters/redis"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/supabase"
	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// ProviderOverride replaces the configured login provider. Tests use it to
	// avoid OIDC discovery.
	ProviderOverride ports.AuthProvider
}

// AuthComponents is the auth wiring shared by the HTTP layer and the access gate.
type AuthComponents struct {
	Service   *service.AuthService
	Overrides ports.OverrideStore
}

// BuildAuthService wires the login provider, token verifiers, Redis sessions
// and the quick-login override store selected by cfg.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*AuthComponents, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("auth requires a redis client for sessions")
	}

	provider := cfg.ProviderOverride
	if provider == nil {
		var err error
		provider, err = buildProvider(ctx, cfg.Auth)
		if err != nil {
			return nil, err
		}
	}

	overrides, err := BuildOverrideStore(cfg.Auth.QuickLogin, cfg.RedisClient, logger)
	if err != nil {
		return nil, err
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider:          provider,
		Sessions:          redisadapter.NewSessionStore(cfg.RedisClient),
		IDTokens:          buildFirebaseVerifier(ctx, cfg.Auth.Firebase, logger),
		Bearer:            buildSupabaseVerifier(cfg.Auth.Supabase, logger),
		Overrides:         overrides,
		QuickLoginEnabled: cfg.Auth.QuickLogin.Enabled,
		QuickLoginUsers:   QuickLoginAccounts(cfg.Auth.QuickLogin),
		SessionTTL:        cfg.Auth.SessionTTL,
		Logger:            logger,
	})

	logger.Info("auth configured",
		"mode", string(cfg.Auth.Mode),
		"firebase", cfg.Auth.Firebase.Enabled(),
		"supabase", cfg.Auth.Supabase.Enabled(),
		"quick_login", cfg.Auth.QuickLogin.Enabled,
		"quick_login_store", string(cfg.Auth.QuickLogin.Store),
	)
	return &AuthComponents{Service: svc, Overrides: overrides}, nil
}

//nolint:ireturn // the provider is selected by auth mode at runtime.
func buildProvider(ctx context.Context, auth config.AuthConfig) (ports.AuthProvider, error) {
	switch auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          auth.DevAuth.UserID,
			Email:           auth.DevAuth.Email,
			FirstName:       auth.DevAuth.FirstName,
			LastName:        auth.DevAuth.LastName,
			SessionDuration: auth.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		oauth := auth.OAuth
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			return nil, fmt.Errorf("oauth mode requires OAUTH_CLIENT_ID, OAUTH_CLIENT_SECRET and OAUTH_DISCOVERY_URL "+
				"(client_id_empty=%t client_secret_empty=%t discovery_url_empty=%t)",
				oauth.ClientID == "", oauth.ClientSecret == "", oauth.DiscoveryURL == "")
		}
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", auth.Mode)
	}
}

// buildFirebaseVerifier returns nil when the bridge is disabled or misconfigured;
// token login then answers 404.
//
//nolint:ireturn // nil interface disables token login.
func buildFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig, logger *slog.Logger) ports.TokenVerifier {
	if !cfg.Enabled() {
		return nil
	}
	v, err := oidc.NewFirebaseVerifier(ctx, oidc.FirebaseConfig{ProjectID: cfg.ProjectID})
	if err != nil {
		logger.Warn("firebase token login disabled", "error", err)
		return nil
	}
	return v
}

//nolint:ireturn // nil interface disables bearer tokens.
func buildSupabaseVerifier(cfg config.SupabaseConfig, logger *slog.Logger) ports.TokenVerifier {
	if !cfg.Enabled() {
		return nil
	}
	v, err := supabase.NewVerifier(supabase.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.Issuer(),
		Audience: cfg.Audience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		logger.Warn("supabase bearer tokens disabled", "error", err)
		return nil
	}
	return v
}

// BuildOverrideStore returns the quick-login flag store selected by cfg.Store.
//
//nolint:ireturn // the backend is chosen by configuration.
func BuildOverrideStore(
	cfg config.QuickLoginConfig,
	client redis.UniversalClient,
	logger *slog.Logger,
) (ports.OverrideStore, error) {
	switch cfg.Store {
	case config.QuickLoginStoreFile:
		store, err := quicklogin.NewFileStore(cfg.File, logger)
		if err != nil {
			return nil, fmt.Errorf("create quick login file store: %w", err)
		}
		return store, nil
	case config.QuickLoginStoreRedis:
		if client == nil {
			return nil, errors.New("quick login redis store requires a redis client")
		}
		return redisadapter.NewOverrideStore(client, redisadapter.OverrideStoreOptions{
			TTL:    service.DefaultQuickLoginTTL,
			Logger: logger,
		}), nil
	default:
		return quicklogin.NewMemoryStore(), nil
	}
}

// QuickLoginAccounts lists the demo accounts with both an email and a hash.
// The superadmin account comes first so it wins when both share an email.
func QuickLoginAccounts(cfg config.QuickLoginConfig) []service.QuickLoginAccount {
	var out []service.QuickLoginAccount
	if cfg.SuperAdminEmail != "" && cfg.SuperAdminPasswordHash != "" {
		out = append(out, service.QuickLoginAccount{
			Email:        cfg.SuperAdminEmail,
			PasswordHash: cfg.SuperAdminPasswordHash,
			Grant:        service.GrantSuperAdmin,
		})
	}
	if cfg.AdminEmail != "" && cfg.AdminPasswordHash != "" {
		out = append(out, service.QuickLoginAccount{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			Grant:        service.GrantAdmin,
		})
	}
	return out
}

// DevRoleDirectory puts the dev identity's configured role in front of base.
// Outside mock mode, or with no configured role, base is returned unchanged.
//
//nolint:ireturn // returns either base or a wrapping directory.
func DevRoleDirectory(auth config.AuthConfig, base ports.RoleDirectory, logger *slog.Logger) ports.RoleDirectory {
	if auth.Mode != config.AuthModeMock || auth.DevAuth.Role == "" {
		return base
	}
	role, err := domainauth.ParseRole(auth.DevAuth.Role)
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring invalid DEV_AUTH_ROLE", "role", auth.DevAuth.Role, "error", err)
		}
		return base
	}
	return authroles.NewStaticDirectory(auth.DevAuth.UserID, role, base)
}
