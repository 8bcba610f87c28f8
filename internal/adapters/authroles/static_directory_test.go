package authroles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	mockauth "github.com/thankyoudoc/thankyoudoc-api/internal/mocks/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

func TestStaticDirectory_ConfiguredUser(t *testing.T) {
	fallback := &mockauth.StaticRoleDirectory{}
	d := NewStaticDirectory("dev-user", domainauth.RoleAdmin, fallback)

	role, err := d.RoleFor(context.Background(), domainauth.Identity{UserID: "dev-user"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, role)
	assert.Zero(t, fallback.Calls())
}

func TestStaticDirectory_DelegatesUnknownUsers(t *testing.T) {
	fallback := &mockauth.StaticRoleDirectory{Roles: map[string]domainauth.Role{"u1": domainauth.RoleModerator}}
	d := NewStaticDirectory("dev-user", domainauth.RoleAdmin, fallback)

	role, err := d.RoleFor(context.Background(), domainauth.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleModerator, role)

	fallback.Err = errors.New("db down")
	_, err = d.RoleFor(context.Background(), domainauth.Identity{UserID: "u1"})
	require.EqualError(t, err, "db down")
	assert.Equal(t, 2, fallback.Calls())
}

func TestStaticDirectory_NoFallback(t *testing.T) {
	d := NewStaticDirectory("dev-user", domainauth.RoleUser, nil)

	_, err := d.RoleFor(context.Background(), domainauth.Identity{UserID: "stranger"})
	require.ErrorIs(t, err, ports.ErrRoleNotFound)
}

func TestNewStaticDirectory_IgnoresInvalid(t *testing.T) {
	assert.Empty(t, NewStaticDirectory("", domainauth.RoleAdmin, nil).Roles)
	assert.Empty(t, NewStaticDirectory("x", domainauth.RoleNone, nil).Roles)
}
