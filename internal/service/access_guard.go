package service

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
)

// Evaluator is the part of AccessGate that guards depend on.
type Evaluator interface {
	EvaluateDetailed(ctx context.Context, req domainauth.AccessRequest) Evaluation
}

// AccessGuard tracks the current decision for one protected area. Each Evaluate
// call takes a new sequence number and cancels the previous in-flight evaluation;
// a result is applied only if its sequence number is still the latest.
type AccessGuard struct {
	gate Evaluator

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  Evaluation
}

// NewAccessGuard returns a guard in the Pending state.
func NewAccessGuard(gate Evaluator) *AccessGuard {
	return &AccessGuard{gate: gate}
}

// Evaluate runs the gate for req. applied is false when a newer Evaluate or a
// Close superseded this one; the returned evaluation is then stale and was discarded.
func (g *AccessGuard) Evaluate(ctx context.Context, req domainauth.AccessRequest) (ev Evaluation, applied bool) {
	ctx, seq := g.begin(ctx)
	ev = g.gate.EvaluateDetailed(ctx, req)
	return ev, g.apply(seq, ev)
}

// Await runs Evaluate but waits at most wait for a terminal decision. On
// timeout the in-flight evaluation is cancelled and the Pending state is returned.
func (g *AccessGuard) Await(ctx context.Context, req domainauth.AccessRequest, wait time.Duration) Evaluation {
	if wait <= 0 {
		ev, _ := g.Evaluate(ctx, req)
		return ev
	}

	done := make(chan Evaluation, 1)
	go func() {
		ev, applied := g.Evaluate(ctx, req)
		if applied {
			done <- ev
		}
		close(done)
	}()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ev, ok := <-done:
		if ok {
			return ev
		}
		return g.State()
	case <-timer.C:
		pending := g.State()
		g.Close()
		return pending
	}
}

// State returns the current evaluation. It is Pending before the first result
// and while an evaluation is in flight.
func (g *AccessGuard) State() Evaluation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Close cancels any in-flight evaluation and discards its result.
func (g *AccessGuard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func (g *AccessGuard) begin(parent context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	g.seq++
	g.cancel = cancel
	g.state = Evaluation{Decision: domainauth.DecisionPending}
	return ctx, g.seq
}

func (g *AccessGuard) apply(seq uint64, ev Evaluation) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.seq {
		return false
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.state = ev
	return true
}

// GuardRegistry hands out one AccessGuard per client key so that a client's
// newer access check supersedes its older in-flight one. Entries live only
// while at least one evaluation for the key is running.
type GuardRegistry struct {
	gate Evaluator

	mu     sync.Mutex
	guards map[string]*guardEntry
}

type guardEntry struct {
	guard *AccessGuard
	refs  int
}

// NewGuardRegistry creates an empty registry.
func NewGuardRegistry(gate Evaluator) *GuardRegistry {
	return &GuardRegistry{gate: gate, guards: make(map[string]*guardEntry)}
}

// Evaluate runs req through the guard for key. An empty key gets a private guard.
func (r *GuardRegistry) Evaluate(
	ctx context.Context,
	key string,
	req domainauth.AccessRequest,
) (Evaluation, bool) {
	if key == "" {
		return NewAccessGuard(r.gate).Evaluate(ctx, req)
	}
	entry := r.acquire(key)
	defer r.release(key)
	return entry.guard.Evaluate(ctx, req)
}

// Await is Evaluate bounded by wait. A timed-out evaluation reports Pending; a
// superseded one reports whatever the key's guard holds at that moment.
func (r *GuardRegistry) Await(
	ctx context.Context,
	key string,
	req domainauth.AccessRequest,
	wait time.Duration,
) Evaluation {
	if key == "" {
		return NewAccessGuard(r.gate).Await(ctx, req, wait)
	}
	entry := r.acquire(key)
	defer r.release(key)
	return entry.guard.Await(ctx, req, wait)
}

// Len reports the number of keys with in-flight evaluations.
func (r *GuardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.guards)
}

func (r *GuardRegistry) acquire(key string) *guardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.guards[key]
	if !ok {
		entry = &guardEntry{guard: NewAccessGuard(r.gate)}
		r.guards[key] = entry
	}
	entry.refs++
	return entry
}

func (r *GuardRegistry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.guards[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.guards, key)
	}
}
