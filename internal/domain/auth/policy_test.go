package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrideDecision(t *testing.T) {
	tests := []struct {
		name     string
		override QuickLoginOverride
		required Role
		want     Decision
		applies  bool
	}{
		{"no override", QuickLoginOverride{}, RoleAdmin, DecisionPending, false},
		{"superadmin moderator", QuickLoginOverride{IsSuperAdmin: true}, RoleModerator, DecisionGranted, true},
		{"superadmin user", QuickLoginOverride{IsSuperAdmin: true}, RoleUser, DecisionGranted, true},
		{"superadmin admin", QuickLoginOverride{IsSuperAdmin: true}, RoleAdmin, DecisionDeniedUnauthorized, true},
		{"admin admin", QuickLoginOverride{IsAdmin: true}, RoleAdmin, DecisionGranted, true},
		{"admin user", QuickLoginOverride{IsAdmin: true}, RoleUser, DecisionGranted, true},
		{"admin moderator", QuickLoginOverride{IsAdmin: true}, RoleModerator, DecisionDeniedUnauthorized, true},
		{"both flags superadmin wins", QuickLoginOverride{IsSuperAdmin: true, IsAdmin: true}, RoleAdmin, DecisionDeniedUnauthorized, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OverrideDecision(tt.override, tt.required)
			assert.Equal(t, tt.applies, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		required Role
		resolved Role
		want     Decision
	}{
		{RoleUser, RoleNone, DecisionGranted},
		{RoleUser, RoleUser, DecisionGranted},
		{RoleUser, RoleAdmin, DecisionGranted},
		{RoleModerator, RoleUser, DecisionDeniedUnauthorized},
		{RoleAdmin, RoleUser, DecisionDeniedUnauthorized},
		{RoleAdmin, RoleModerator, DecisionDeniedUnauthorized},
		{RoleModerator, RoleAdmin, DecisionDeniedUnauthorized},
		{RoleAdmin, RoleNone, DecisionDeniedUnauthorized},
		{RoleAdmin, RoleAdmin, DecisionGranted},
		{RoleModerator, RoleModerator, DecisionGranted},
	}
	for _, tt := range tests {
		t.Run(tt.required.String()+"/"+tt.resolved.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.required, tt.resolved))
		})
	}
}
