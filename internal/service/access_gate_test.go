package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/mocks"
	mockauth "github.com/thankyoudoc/thankyoudoc-api/internal/mocks/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

var allRoles = []domainauth.Role{domainauth.RoleUser, domainauth.RoleModerator, domainauth.RoleAdmin}

type gateFixture struct {
	gate      *AccessGate
	sessions  *mockauth.StaticIdentityResolver
	roles     *mockauth.StaticRoleDirectory
	overrides *mockauth.MemoryOverrideStore
	logs      *bytes.Buffer
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	f := &gateFixture{
		sessions:  &mockauth.StaticIdentityResolver{},
		roles:     &mockauth.StaticRoleDirectory{Roles: map[string]domainauth.Role{}},
		overrides: mockauth.NewMemoryOverrideStore(),
		logs:      &bytes.Buffer{},
	}
	f.gate = NewAccessGate(AccessGateOptions{
		Overrides: f.overrides,
		Sessions:  f.sessions,
		Roles:     f.roles,
		Logger:    slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	return f
}

func (f *gateFixture) signIn(userID string, role domainauth.Role) {
	f.sessions.Identity = domainauth.Identity{UserID: userID, Email: userID + "@example.com"}
	if role != domainauth.RoleNone {
		f.roles.Roles[userID] = role
	}
}

func accessReq(role domainauth.Role) domainauth.AccessRequest {
	return domainauth.AccessRequest{RequiredRole: role}
}

// quickReq is a request from the quick-login client clientID.
func quickReq(role domainauth.Role, clientID string) domainauth.AccessRequest {
	return domainauth.AccessRequest{RequiredRole: role, Credential: domainauth.Credential{QuickLoginID: clientID}}
}

func TestAccessGate_NoSessionNoOverride_DeniedUnauthenticated(t *testing.T) {
	for _, role := range allRoles {
		t.Run(role.String(), func(t *testing.T) {
			f := newGateFixture(t)
			assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, f.gate.Evaluate(context.Background(), accessReq(role)))
			assert.Equal(t, 1, f.sessions.Calls())
			assert.Zero(t, f.roles.Calls(), "role directory must not be queried without an identity")
		})
	}
}

func TestAccessGate_DefaultRequestIsUserTier(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.RoleNone)
	assert.Equal(t, domainauth.DecisionGranted, f.gate.Evaluate(context.Background(), domainauth.AccessRequest{}))
}

func TestAccessGate_UserTierGrantsAnyAuthenticatedIdentity(t *testing.T) {
	for _, role := range []domainauth.Role{domainauth.RoleNone, domainauth.RoleUser, domainauth.RoleModerator, domainauth.RoleAdmin} {
		t.Run(role.String(), func(t *testing.T) {
			f := newGateFixture(t)
			f.signIn("u1", role)
			ev := f.gate.EvaluateDetailed(context.Background(), accessReq(domainauth.RoleUser))
			assert.Equal(t, domainauth.DecisionGranted, ev.Decision)
			assert.Equal(t, "u1", ev.Identity.UserID)
			assert.Equal(t, role, ev.Role)
			assert.True(t, ev.Authenticated())
		})
	}
}

func TestAccessGate_ExactRoleMatch(t *testing.T) {
	tests := []struct {
		resolved domainauth.Role
		required domainauth.Role
		want     domainauth.Decision
	}{
		{domainauth.RoleUser, domainauth.RoleModerator, domainauth.DecisionDeniedUnauthorized},
		{domainauth.RoleUser, domainauth.RoleAdmin, domainauth.DecisionDeniedUnauthorized},
		{domainauth.RoleModerator, domainauth.RoleAdmin, domainauth.DecisionDeniedUnauthorized},
		{domainauth.RoleAdmin, domainauth.RoleModerator, domainauth.DecisionDeniedUnauthorized},
		{domainauth.RoleModerator, domainauth.RoleModerator, domainauth.DecisionGranted},
		{domainauth.RoleAdmin, domainauth.RoleAdmin, domainauth.DecisionGranted},
	}
	for _, tt := range tests {
		t.Run(tt.resolved.String()+"_needs_"+tt.required.String(), func(t *testing.T) {
			f := newGateFixture(t)
			f.signIn("u1", tt.resolved)
			assert.Equal(t, tt.want, f.gate.Evaluate(context.Background(), accessReq(tt.required)))
		})
	}
}

func TestAccessGate_QuickLoginOverrides(t *testing.T) {
	tests := []struct {
		name     string
		override domainauth.QuickLoginOverride
		required domainauth.Role
		want     domainauth.Decision
	}{
		{"superadmin moderator", domainauth.QuickLoginOverride{IsSuperAdmin: true}, domainauth.RoleModerator, domainauth.DecisionGranted},
		{"superadmin admin", domainauth.QuickLoginOverride{IsSuperAdmin: true}, domainauth.RoleAdmin, domainauth.DecisionDeniedUnauthorized},
		{"superadmin user", domainauth.QuickLoginOverride{IsSuperAdmin: true}, domainauth.RoleUser, domainauth.DecisionGranted},
		{"admin admin", domainauth.QuickLoginOverride{IsAdmin: true}, domainauth.RoleAdmin, domainauth.DecisionGranted},
		{"admin moderator", domainauth.QuickLoginOverride{IsAdmin: true}, domainauth.RoleModerator, domainauth.DecisionDeniedUnauthorized},
		{"admin user", domainauth.QuickLoginOverride{IsAdmin: true}, domainauth.RoleUser, domainauth.DecisionGranted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t)
			require.NoError(t, f.overrides.Save("ql-1", tt.override))

			ev := f.gate.EvaluateDetailed(context.Background(), quickReq(tt.required, "ql-1"))
			assert.Equal(t, tt.want, ev.Decision)
			assert.True(t, ev.OverrideActive)
			assert.True(t, ev.Authenticated())
			assert.Zero(t, f.sessions.Calls(), "override must skip the session store")
			assert.Zero(t, f.roles.Calls(), "override must skip the role directory")
		})
	}
}

func TestAccessGate_OverrideWinsOverRealSession(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.RoleAdmin)
	require.NoError(t, f.overrides.Save("ql-1", domainauth.QuickLoginOverride{IsSuperAdmin: true}))

	req := domainauth.AccessRequest{
		RequiredRole: domainauth.RoleAdmin,
		Credential:   domainauth.Credential{SessionID: "sess-1", QuickLoginID: "ql-1"},
	}
	assert.Equal(t, domainauth.DecisionDeniedUnauthorized, f.gate.Evaluate(context.Background(), req))
}

func TestAccessGate_OverrideBelongsToOneClient(t *testing.T) {
	f := newGateFixture(t)
	require.NoError(t, f.overrides.Save("ql-1", domainauth.QuickLoginOverride{IsSuperAdmin: true}))

	assert.Equal(t, domainauth.DecisionGranted, f.gate.Evaluate(context.Background(), quickReq(domainauth.RoleModerator, "ql-1")))

	for name, req := range map[string]domainauth.AccessRequest{
		"no client id":    accessReq(domainauth.RoleModerator),
		"other client id": quickReq(domainauth.RoleModerator, "ql-2"),
	} {
		t.Run(name, func(t *testing.T) {
			ev := f.gate.EvaluateDetailed(context.Background(), req)
			assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, ev.Decision)
			assert.False(t, ev.OverrideActive)
		})
	}
}

func TestAccessGate_RoleDirectoryTransportError_FailsClosed(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.RoleAdmin)
	f.roles.Err = errors.New("connection refused")

	var ev Evaluation
	require.NotPanics(t, func() {
		ev = f.gate.EvaluateDetailed(context.Background(), accessReq(domainauth.RoleAdmin))
	})
	assert.Equal(t, domainauth.DecisionDeniedUnauthorized, ev.Decision)
	assert.Equal(t, domainauth.RoleNone, ev.Role)
	assert.Contains(t, f.logs.String(), "role lookup failed")
	assert.Contains(t, f.logs.String(), `"required_role":"admin"`)
	assert.Contains(t, f.logs.String(), `"override_active":false`)

	assert.Equal(t, domainauth.DecisionGranted, f.gate.Evaluate(context.Background(), accessReq(domainauth.RoleUser)))
}

func TestAccessGate_SessionStoreTransportError_DeniedUnauthenticated(t *testing.T) {
	f := newGateFixture(t)
	f.sessions.Err = errors.New("redis timeout")

	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, f.gate.Evaluate(context.Background(), accessReq(domainauth.RoleModerator)))
	assert.Zero(t, f.roles.Calls())
	assert.Contains(t, f.logs.String(), "session lookup failed")
}

func TestAccessGate_Idempotent(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.RoleModerator)
	for _, role := range allRoles {
		first := f.gate.Evaluate(context.Background(), accessReq(role))
		second := f.gate.Evaluate(context.Background(), accessReq(role))
		assert.Equal(t, first, second, role.String())
	}
}

func TestAccessGate_AtMostOneCallPerCollaborator(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockIdentityResolver(ctrl)
	roles := mocks.NewMockRoleDirectory(ctrl)
	overrides := mocks.NewMockOverrideStore(ctrl)
	recorder := mocks.NewMockDecisionRecorder(ctrl)

	identity := domainauth.Identity{UserID: "u1"}
	cred := domainauth.Credential{SessionID: "sess-1", QuickLoginID: "ql-1"}
	gomock.InOrder(
		overrides.EXPECT().Load("ql-1").Return(domainauth.QuickLoginOverride{}).Times(1),
		sessions.EXPECT().Resolve(gomock.Any(), cred).Return(identity, nil).Times(1),
		roles.EXPECT().RoleFor(gomock.Any(), identity).Return(domainauth.RoleModerator, nil).Times(1),
	)
	recorder.EXPECT().RecordDecision(gomock.Any()).DoAndReturn(func(rec ports.DecisionRecord) {
		assert.Equal(t, domainauth.DecisionGranted, rec.Decision)
		assert.Equal(t, domainauth.RoleModerator, rec.RequiredRole)
		assert.False(t, rec.OverrideActive)
	})

	gate := NewAccessGate(AccessGateOptions{Overrides: overrides, Sessions: sessions, Roles: roles, Recorder: recorder})
	got := gate.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleModerator, Credential: cred})
	assert.Equal(t, domainauth.DecisionGranted, got)
}

func TestAccessGate_NoIdentityIsNotLoggedAsFailure(t *testing.T) {
	f := newGateFixture(t)
	f.sessions.Err = ports.ErrNoIdentity
	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, f.gate.Evaluate(context.Background(), accessReq(domainauth.RoleUser)))
	assert.NotContains(t, f.logs.String(), "session lookup failed")
}

// ctxResolver blocks until its context ends.
type ctxResolver struct{}

func (ctxResolver) Resolve(ctx context.Context, _ domainauth.Credential) (domainauth.Identity, error) {
	<-ctx.Done()
	return domainauth.Identity{}, ctx.Err()
}

func TestAccessGate_CancelledLookupIsNotLoggedAsFailure(t *testing.T) {
	var logs bytes.Buffer
	gate := NewAccessGate(AccessGateOptions{
		Sessions: ctxResolver{},
		Roles:    &mockauth.StaticRoleDirectory{},
		Logger:   slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, gate.Evaluate(ctx, accessReq(domainauth.RoleUser)))
	assert.NotContains(t, logs.String(), "session lookup failed")
	assert.NotContains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "session lookup abandoned")
}

func TestAccessGate_CancelledRoleLookupIsDebug(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.RoleAdmin)
	f.roles.Err = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, domainauth.DecisionDeniedUnauthorized, f.gate.Evaluate(ctx, accessReq(domainauth.RoleAdmin)))
	assert.NotContains(t, f.logs.String(), "role lookup failed")
	assert.Contains(t, f.logs.String(), "role lookup abandoned")
}

type panickingResolver struct{}

func (panickingResolver) Resolve(context.Context, domainauth.Credential) (domainauth.Identity, error) {
	panic("nil session client")
}

func TestAccessGate_CollaboratorPanic_FailsClosed(t *testing.T) {
	var logs bytes.Buffer
	gate := NewAccessGate(AccessGateOptions{
		Sessions: panickingResolver{},
		Roles:    &mockauth.StaticRoleDirectory{},
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	var got domainauth.Decision
	require.NotPanics(t, func() { got = gate.Evaluate(context.Background(), accessReq(domainauth.RoleUser)) })
	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, got)
	assert.Contains(t, logs.String(), "access evaluation panicked")
}

func TestAccessGate_UnknownRoleFromDirectoryIsNone(t *testing.T) {
	f := newGateFixture(t)
	f.signIn("u1", domainauth.Role("superuser"))
	ev := f.gate.EvaluateDetailed(context.Background(), accessReq(domainauth.RoleAdmin))
	assert.Equal(t, domainauth.DecisionDeniedUnauthorized, ev.Decision)
	assert.Equal(t, domainauth.RoleNone, ev.Role)
}

func TestAccessGate_NilOverrideStore(t *testing.T) {
	gate := NewAccessGate(AccessGateOptions{
		Sessions: &mockauth.StaticIdentityResolver{Identity: domainauth.Identity{UserID: "u1"}},
		Roles:    &mockauth.StaticRoleDirectory{Roles: map[string]domainauth.Role{"u1": domainauth.RoleAdmin}},
	})
	assert.Equal(t, domainauth.DecisionGranted, gate.Evaluate(context.Background(), accessReq(domainauth.RoleAdmin)))
}
