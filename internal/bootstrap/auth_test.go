package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/authroles"
	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/quicklogin"
	redisadapter "github.com/thankyoudoc/thankyoudoc-api/internal/adapters/redis"
	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	mockauth "github.com/thankyoudoc/thankyoudoc-api/internal/mocks/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// lazyRedis returns a client that never dials unless a command is issued.
func lazyRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBuildAuthService_RequiresRedis(t *testing.T) {
	_, err := BuildAuthService(context.Background(), AuthConfig{
		Auth:   config.AuthConfig{Mode: config.AuthModeMock},
		Logger: discardLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestBuildAuthService_OAuthRequiresCredentials(t *testing.T) {
	_, err := BuildAuthService(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode:  config.AuthModeOAuth,
			OAuth: config.OAuthConfig{DiscoveryURL: "https://accounts.google.com"},
		},
		RedisClient: lazyRedis(t),
		Logger:      discardLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id_empty=true")
}

func TestBuildAuthService_MockMode(t *testing.T) {
	comps, err := BuildAuthService(context.Background(), AuthConfig{
		Auth: config.AuthConfig{
			Mode:    config.AuthModeMock,
			DevAuth: config.DevAuthConfig{UserID: "dev-1", Email: "dev@example.com"},
			QuickLogin: config.QuickLoginConfig{
				Enabled:           true,
				Store:             config.QuickLoginStoreMemory,
				AdminEmail:        "admin@example.com",
				AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
			},
		},
		RedisClient: lazyRedis(t),
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, comps.Service)
	assert.True(t, comps.Service.QuickLoginEnabled())
	assert.IsType(t, &quicklogin.MemoryStore{}, comps.Overrides)

	res, err := comps.Service.BeginLogin(context.Background(), "/auth/callback")
	require.NoError(t, err)
	assert.NotEmpty(t, res.State)
	assert.NotEmpty(t, res.Nonce)
}

func TestBuildAuthService_ProviderOverride(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	comps, err := BuildAuthService(context.Background(), AuthConfig{
		Auth:             config.AuthConfig{Mode: config.AuthModeOAuth},
		RedisClient:      lazyRedis(t),
		Logger:           discardLogger(),
		ProviderOverride: provider,
	})
	require.NoError(t, err)

	res, err := comps.Service.BeginLogin(context.Background(), "https://app.example.com/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "state-1", res.State)
	assert.Contains(t, res.AuthURL, "https://mock-idp/auth")

	_, err = comps.Service.LoginWithToken(context.Background(), "token")
	require.ErrorIs(t, err, service.ErrTokenLoginUnavailable)
}

func TestBuildOverrideStore(t *testing.T) {
	logger := discardLogger()

	mem, err := BuildOverrideStore(config.QuickLoginConfig{Store: config.QuickLoginStoreMemory}, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &quicklogin.MemoryStore{}, mem)

	path := filepath.Join(t.TempDir(), "quick-login.yaml")
	file, err := BuildOverrideStore(config.QuickLoginConfig{Store: config.QuickLoginStoreFile, File: path}, nil, logger)
	require.NoError(t, err)
	require.IsType(t, &quicklogin.FileStore{}, file)
	assert.Equal(t, path, file.(*quicklogin.FileStore).Path())

	_, err = BuildOverrideStore(config.QuickLoginConfig{Store: config.QuickLoginStoreFile}, nil, logger)
	require.Error(t, err)

	_, err = BuildOverrideStore(config.QuickLoginConfig{Store: config.QuickLoginStoreRedis}, nil, logger)
	require.Error(t, err)

	rs, err := BuildOverrideStore(config.QuickLoginConfig{Store: config.QuickLoginStoreRedis}, lazyRedis(t), logger)
	require.NoError(t, err)
	assert.IsType(t, &redisadapter.OverrideStore{}, rs)
}

func TestQuickLoginAccounts(t *testing.T) {
	assert.Empty(t, QuickLoginAccounts(config.QuickLoginConfig{SuperAdminEmail: "root@example.com"}))

	got := QuickLoginAccounts(config.QuickLoginConfig{
		SuperAdminEmail:        "root@example.com",
		SuperAdminPasswordHash: "hash-root",
		AdminEmail:             "admin@example.com",
		AdminPasswordHash:      "hash-admin",
	})
	require.Len(t, got, 2)
	assert.Equal(t, service.GrantSuperAdmin, got[0].Grant)
	assert.Equal(t, "root@example.com", got[0].Email)
	assert.Equal(t, service.GrantAdmin, got[1].Grant)
	assert.Equal(t, "hash-admin", got[1].PasswordHash)
}

func TestDevRoleDirectory(t *testing.T) {
	base := &mockauth.StaticRoleDirectory{Roles: map[string]domainauth.Role{"patient-1": domainauth.RoleUser}}
	ctx := context.Background()

	t.Run("oauth mode keeps base", func(t *testing.T) {
		dir := DevRoleDirectory(config.AuthConfig{Mode: config.AuthModeOAuth}, base, discardLogger())
		assert.Same(t, base, dir)
	})

	t.Run("invalid role keeps base", func(t *testing.T) {
		auth := config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{UserID: "dev", Role: "owner"}}
		assert.Same(t, base, DevRoleDirectory(auth, base, discardLogger()))
	})

	t.Run("mock mode serves dev role first", func(t *testing.T) {
		auth := config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{UserID: "dev", Role: "Admin"}}
		dir := DevRoleDirectory(auth, base, discardLogger())
		require.IsType(t, &authroles.StaticDirectory{}, dir)

		calls := base.Calls()
		role, err := dir.RoleFor(ctx, domainauth.Identity{UserID: "dev"})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, role)
		assert.Equal(t, calls, base.Calls())

		role, err = dir.RoleFor(ctx, domainauth.Identity{UserID: "patient-1"})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleUser, role)
	})
}
