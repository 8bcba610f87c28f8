package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	mockauth "github.com/thankyoudoc/thankyoudoc-api/internal/mocks/auth"
)

// gatedEvaluator blocks each evaluation until released or until its context ends.
type gatedEvaluator struct {
	mu       sync.Mutex
	started  chan struct{}
	release  map[domainauth.Role]chan Evaluation
	canceled []domainauth.Role
}

func newGatedEvaluator(roles ...domainauth.Role) *gatedEvaluator {
	e := &gatedEvaluator{started: make(chan struct{}, 8), release: map[domainauth.Role]chan Evaluation{}}
	for _, r := range roles {
		e.release[r] = make(chan Evaluation, 1)
	}
	return e
}

func (e *gatedEvaluator) EvaluateDetailed(ctx context.Context, req domainauth.AccessRequest) Evaluation {
	e.mu.Lock()
	ch := e.release[req.RequiredRole]
	e.mu.Unlock()
	e.started <- struct{}{}
	select {
	case ev := <-ch:
		return ev
	case <-ctx.Done():
		e.mu.Lock()
		e.canceled = append(e.canceled, req.RequiredRole)
		e.mu.Unlock()
		return Evaluation{Decision: domainauth.DecisionDeniedUnauthenticated}
	}
}

func (e *gatedEvaluator) canceledRoles() []domainauth.Role {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domainauth.Role(nil), e.canceled...)
}

func TestAccessGuard_InitialStateIsPending(t *testing.T) {
	g := NewAccessGuard(newGatedEvaluator())
	assert.Equal(t, domainauth.DecisionPending, g.State().Decision)
}

func TestAccessGuard_AppliesResult(t *testing.T) {
	gate := NewAccessGate(AccessGateOptions{
		Sessions: &mockauth.StaticIdentityResolver{Identity: domainauth.Identity{UserID: "u1"}},
		Roles:    &mockauth.StaticRoleDirectory{Roles: map[string]domainauth.Role{"u1": domainauth.RoleModerator}},
	})
	g := NewAccessGuard(gate)

	ev, applied := g.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleModerator})
	require.True(t, applied)
	assert.Equal(t, domainauth.DecisionGranted, ev.Decision)
	assert.Equal(t, ev, g.State())
}

func TestAccessGuard_StateIsPendingWhileInFlight(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin)
	g := NewAccessGuard(eval)

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin})
	}()
	<-eval.started
	assert.Equal(t, domainauth.DecisionPending, g.State().Decision)

	eval.release[domainauth.RoleAdmin] <- Evaluation{Decision: domainauth.DecisionGranted}
	<-done
	assert.Equal(t, domainauth.DecisionGranted, g.State().Decision)
}

func TestAccessGuard_SupersededResultIsDiscarded(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin, domainauth.RoleModerator)
	g := NewAccessGuard(eval)

	type result struct {
		ev      Evaluation
		applied bool
	}
	first := make(chan result, 1)
	go func() {
		ev, applied := g.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin})
		first <- result{ev, applied}
	}()
	<-eval.started

	second := make(chan result, 1)
	go func() {
		ev, applied := g.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleModerator})
		second <- result{ev, applied}
	}()
	<-eval.started

	old := <-first
	assert.False(t, old.applied, "older evaluation must not be applied")
	assert.Equal(t, []domainauth.Role{domainauth.RoleAdmin}, eval.canceledRoles())
	assert.Equal(t, domainauth.DecisionPending, g.State().Decision)

	eval.release[domainauth.RoleModerator] <- Evaluation{Decision: domainauth.DecisionDeniedUnauthorized}
	latest := <-second
	assert.True(t, latest.applied)
	assert.Equal(t, domainauth.DecisionDeniedUnauthorized, g.State().Decision)
}

func TestAccessGuard_CloseDiscardsInFlight(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin)
	g := NewAccessGuard(eval)

	applied := make(chan bool, 1)
	go func() {
		_, ok := g.Evaluate(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin})
		applied <- ok
	}()
	<-eval.started
	g.Close()

	assert.False(t, <-applied)
	assert.Equal(t, domainauth.DecisionPending, g.State().Decision)
}

func TestAccessGuard_AwaitTimeoutReturnsPending(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin)
	g := NewAccessGuard(eval)

	ev := g.Await(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin}, 20*time.Millisecond)
	assert.Equal(t, domainauth.DecisionPending, ev.Decision)

	assert.Eventually(t, func() bool {
		return len(eval.canceledRoles()) == 1
	}, time.Second, 5*time.Millisecond, "timed out evaluation should be cancelled")
	assert.Equal(t, domainauth.DecisionPending, g.State().Decision)
}

func TestAccessGuard_AwaitReturnsTerminalDecision(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleUser)
	eval.release[domainauth.RoleUser] <- Evaluation{Decision: domainauth.DecisionGranted}
	g := NewAccessGuard(eval)

	ev := g.Await(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleUser}, time.Second)
	assert.Equal(t, domainauth.DecisionGranted, ev.Decision)
}

func TestAccessGuard_AwaitWithoutDeadline(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleUser)
	eval.release[domainauth.RoleUser] <- Evaluation{Decision: domainauth.DecisionDeniedUnauthenticated}
	g := NewAccessGuard(eval)

	ev := g.Await(context.Background(), domainauth.AccessRequest{RequiredRole: domainauth.RoleUser}, 0)
	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, ev.Decision)
}

func TestGuardRegistry_ReleasesEntries(t *testing.T) {
	gate := NewAccessGate(AccessGateOptions{
		Sessions: &mockauth.StaticIdentityResolver{},
		Roles:    &mockauth.StaticRoleDirectory{},
	})
	reg := NewGuardRegistry(gate)

	ev, applied := reg.Evaluate(context.Background(), "sess-1", domainauth.AccessRequest{})
	assert.True(t, applied)
	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, ev.Decision)
	assert.Zero(t, reg.Len())

	ev, applied = reg.Evaluate(context.Background(), "", domainauth.AccessRequest{})
	assert.True(t, applied)
	assert.Equal(t, domainauth.DecisionDeniedUnauthenticated, ev.Decision)
	assert.Zero(t, reg.Len())
}

func TestGuardRegistry_NewerCheckSupersedesOlderForSameKey(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin, domainauth.RoleModerator)
	reg := NewGuardRegistry(eval)

	first := make(chan bool, 1)
	go func() {
		_, applied := reg.Evaluate(context.Background(), "sess-1", domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin})
		first <- applied
	}()
	<-eval.started
	assert.Equal(t, 1, reg.Len())

	second := make(chan bool, 1)
	go func() {
		_, applied := reg.Evaluate(context.Background(), "sess-1", domainauth.AccessRequest{RequiredRole: domainauth.RoleModerator})
		second <- applied
	}()
	<-eval.started

	assert.False(t, <-first)
	eval.release[domainauth.RoleModerator] <- Evaluation{Decision: domainauth.DecisionGranted}
	assert.True(t, <-second)
	assert.Zero(t, reg.Len())
}

func TestGuardRegistry_AwaitTimeoutReportsPending(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleAdmin)
	reg := NewGuardRegistry(eval)

	ev := reg.Await(context.Background(), "sess-1", domainauth.AccessRequest{RequiredRole: domainauth.RoleAdmin}, 20*time.Millisecond)
	assert.Equal(t, domainauth.DecisionPending, ev.Decision)
	require.Eventually(t, func() bool { return len(eval.canceledRoles()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, reg.Len())
}

func TestGuardRegistry_AwaitReturnsDecision(t *testing.T) {
	eval := newGatedEvaluator(domainauth.RoleUser)
	eval.release[domainauth.RoleUser] <- Evaluation{Decision: domainauth.DecisionGranted}
	reg := NewGuardRegistry(eval)

	ev := reg.Await(context.Background(), "", domainauth.AccessRequest{RequiredRole: domainauth.RoleUser}, time.Second)
	assert.Equal(t, domainauth.DecisionGranted, ev.Decision)
}
