package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// AccessGateOptions groups dependencies for AccessGate.
type AccessGateOptions struct {
	Overrides ports.OverrideStore    // optional; nil means no quick-login override
	Sessions  ports.IdentityResolver // required
	Roles     ports.RoleDirectory    // required
	Recorder  ports.DecisionRecorder // optional
	Logger    *slog.Logger           // optional
}

// Evaluation is the full result of one access evaluation.
// Identity is set only when a session was resolved; Role is RoleNone when
// the directory had no record or failed.
type Evaluation struct {
	Decision       domainauth.Decision
	Identity       domainauth.Identity
	Role           domainauth.Role
	OverrideActive bool
}

// Authenticated reports whether the evaluation confirmed an actor, either by
// session or by quick-login override.
func (e Evaluation) Authenticated() bool {
	return e.OverrideActive || e.Identity.UserID != ""
}

// AccessGate decides whether the current actor may enter a role-restricted area.
// It makes at most one Session Store call and at most one Role Directory call per
// evaluation and never returns an error: every failure folds into a denial.
type AccessGate struct {
	overrides ports.OverrideStore
	sessions  ports.IdentityResolver
	roles     ports.RoleDirectory
	recorder  ports.DecisionRecorder
	logger    *slog.Logger
}

// NewAccessGate constructs a new AccessGate.
func NewAccessGate(opts AccessGateOptions) *AccessGate {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGate{
		overrides: opts.Overrides,
		sessions:  opts.Sessions,
		roles:     opts.Roles,
		recorder:  opts.Recorder,
		logger:    logger.With("component", "access_gate"),
	}
}

// Evaluate returns the decision for req.
func (g *AccessGate) Evaluate(ctx context.Context, req domainauth.AccessRequest) domainauth.Decision {
	return g.EvaluateDetailed(ctx, req).Decision
}

// EvaluateDetailed returns the decision for req together with the identity and
// role it was based on.
func (g *AccessGate) EvaluateDetailed(ctx context.Context, req domainauth.AccessRequest) (ev Evaluation) {
	req = req.Normalize()
	start := time.Now()

	var override domainauth.QuickLoginOverride
	defer func() {
		log := g.logger.With(
			"required_role", req.RequiredRole.String(),
			"override_active", override.Active(),
		)
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "access evaluation panicked", "panic", fmt.Sprint(r))
			ev = Evaluation{Decision: domainauth.DecisionDeniedUnauthenticated}
		}
		log.DebugContext(ctx, "access decided", "decision", ev.Decision.String(), "user_id", ev.Identity.UserID)
		g.record(ports.DecisionRecord{
			Decision:       ev.Decision,
			RequiredRole:   req.RequiredRole,
			OverrideActive: override.Active(),
			Duration:       time.Since(start),
		})
	}()

	override = g.loadOverride(req.Credential.QuickLoginID)
	log := g.logger.With(
		"required_role", req.RequiredRole.String(),
		"override_active", override.Active(),
	)

	if decision, ok := domainauth.OverrideDecision(override, req.RequiredRole); ok {
		return Evaluation{Decision: decision, OverrideActive: true}
	}

	identity, err := g.sessions.Resolve(ctx, req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNoIdentity):
		case ctx.Err() != nil:
			log.DebugContext(ctx, "session lookup abandoned", "error", err)
		default:
			log.WarnContext(ctx, "session lookup failed", "error", err)
		}
		return Evaluation{Decision: domainauth.DecisionDeniedUnauthenticated}
	}
	if identity.UserID == "" {
		return Evaluation{Decision: domainauth.DecisionDeniedUnauthenticated}
	}

	role := g.lookupRole(ctx, log, identity)
	return Evaluation{
		Decision: domainauth.Authorize(req.RequiredRole, role),
		Identity: identity,
		Role:     role,
	}
}

// loadOverride returns the flags bound to one quick-login client.
func (g *AccessGate) loadOverride(clientID string) domainauth.QuickLoginOverride {
	if g.overrides == nil || clientID == "" {
		return domainauth.QuickLoginOverride{}
	}
	return g.overrides.Load(clientID)
}

// lookupRole folds not-found and transport failures into RoleNone.
func (g *AccessGate) lookupRole(ctx context.Context, log *slog.Logger, identity domainauth.Identity) domainauth.Role {
	role, err := g.roles.RoleFor(ctx, identity)
	switch {
	case err == nil && role.Valid():
		return role
	case err == nil:
		log.WarnContext(ctx, "role directory returned unknown role", "user_id", identity.UserID, "role", string(role))
	case errors.Is(err, ports.ErrRoleNotFound):
		log.DebugContext(ctx, "no role record", "user_id", identity.UserID)
	case ctx.Err() != nil:
		log.DebugContext(ctx, "role lookup abandoned", "user_id", identity.UserID, "error", err)
	default:
		log.WarnContext(ctx, "role lookup failed", "user_id", identity.UserID, "error", err)
	}
	return domainauth.RoleNone
}

func (g *AccessGate) record(rec ports.DecisionRecord) {
	if g.recorder == nil {
		return
	}
	g.recorder.RecordDecision(rec)
}
