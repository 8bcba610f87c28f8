// Package authroles provides role directory adapters used ahead of the database.
package authroles

import (
	"context"
	"strings"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// StaticDirectory answers role lookups for a fixed set of users and delegates
// everyone else to Fallback. It lets the dev identity carry a configured role
// without a user_roles row.
type StaticDirectory struct {
	Roles    map[string]domainauth.Role
	Fallback ports.RoleDirectory // optional; nil means ErrRoleNotFound for unknown users
}

var _ ports.RoleDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory builds a directory with a single user mapped to role.
func NewStaticDirectory(userID string, role domainauth.Role, fallback ports.RoleDirectory) *StaticDirectory {
	roles := map[string]domainauth.Role{}
	if id := strings.TrimSpace(userID); id != "" && role.Valid() {
		roles[id] = role
	}
	return &StaticDirectory{Roles: roles, Fallback: fallback}
}

func (d *StaticDirectory) RoleFor(ctx context.Context, identity domainauth.Identity) (domainauth.Role, error) {
	if role, ok := d.Roles[identity.UserID]; ok {
		return role, nil
	}
	if d.Fallback == nil {
		return domainauth.RoleNone, ports.ErrRoleNotFound
	}
	return d.Fallback.RoleFor(ctx, identity)
}
