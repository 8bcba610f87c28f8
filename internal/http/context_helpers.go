package httpx

import (
	"context"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// accessKey is an unexported context key type to avoid collisions across packages.
type accessKey struct{}

// SetAccessInContext returns a child context carrying the granted evaluation.
func SetAccessInContext(ctx context.Context, ev service.Evaluation) context.Context {
	return context.WithValue(ctx, accessKey{}, ev)
}

// GetAccessFromContext returns the evaluation that admitted the request.
func GetAccessFromContext(ctx context.Context) (service.Evaluation, bool) {
	ev, ok := ctx.Value(accessKey{}).(service.Evaluation)
	return ev, ok
}

// GetIdentityFromContext returns the authenticated identity, if a session backed the request.
// Requests admitted by a quick-login override carry no identity.
func GetIdentityFromContext(ctx context.Context) (domainauth.Identity, bool) {
	ev, ok := GetAccessFromContext(ctx)
	if !ok || ev.Identity.UserID == "" {
		return domainauth.Identity{}, false
	}
	return ev.Identity, true
}
