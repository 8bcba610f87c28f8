package auth

// OverrideDecision applies the quick-login short-circuit.
// ok is false when no override flag is set and the normal session path applies.
//
// The super-admin flag satisfies the moderator and user tiers, the admin flag
// satisfies the admin and user tiers. The super-admin flag is checked first.
// An active flag that does not cover the tier is unauthorized, never unauthenticated.
func OverrideDecision(o QuickLoginOverride, required Role) (Decision, bool) {
	switch {
	case o.IsSuperAdmin:
		if required == RoleModerator || required == RoleUser {
			return DecisionGranted, true
		}
		return DecisionDeniedUnauthorized, true
	case o.IsAdmin:
		if required == RoleAdmin || required == RoleUser {
			return DecisionGranted, true
		}
		return DecisionDeniedUnauthorized, true
	default:
		return DecisionPending, false
	}
}

// Authorize decides for an authenticated identity whose directory role is resolved.
// The user tier only requires authentication; other tiers require an exact match.
// There is no hierarchy: admin does not satisfy moderator and vice versa.
func Authorize(required, resolved Role) Decision {
	if required == RoleUser || required == RoleNone {
		return DecisionGranted
	}
	if resolved == required {
		return DecisionGranted
	}
	return DecisionDeniedUnauthorized
}
