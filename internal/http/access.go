package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// DefaultAccessWait bounds how long a request waits for an access decision
// before it is answered as pending.
const DefaultAccessWait = 3 * time.Second

// pendingRefreshSeconds is the Refresh interval on the loading page.
const pendingRefreshSeconds = 1

// AccessChecker evaluates access for a client key. *service.GuardRegistry implements it.
type AccessChecker interface {
	Await(ctx context.Context, key string, req domainauth.AccessRequest, wait time.Duration) service.Evaluation
}

// AccessOptions configures RequireAccess.
type AccessOptions struct {
	Checker AccessChecker
	// Request is the template for every evaluation; the credential is filled per request.
	Request domainauth.AccessRequest
	// Wait bounds the evaluation; zero uses DefaultAccessWait.
	Wait   time.Duration
	Logger *slog.Logger
}

// RequireAccess returns a middleware that admits a request only when the access
// gate grants it within the wait bound. Denials and pending decisions are
// rendered per request kind: browsers get pages and redirects, API callers get JSON.
func RequireAccess(opts AccessOptions) func(http.Handler) http.Handler {
	tmpl := opts.Request.Normalize()
	wait := opts.Wait
	if wait <= 0 {
		wait = DefaultAccessWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := tmpl
			req.Credential = credentialFromRequest(r)
			// Every HTTP request is its own access request: an empty key gives it a
			// private guard, so concurrent calls from one client never cancel each other.
			ev := opts.Checker.Await(r.Context(), "", req, wait)

			switch ev.Decision {
			case domainauth.DecisionGranted:
				next.ServeHTTP(w, r.WithContext(SetAccessInContext(r.Context(), ev)))
			case domainauth.DecisionPending:
				renderPending(w, r)
			case domainauth.DecisionDeniedUnauthenticated:
				renderUnauthenticated(w, r, req.RedirectTarget)
			case domainauth.DecisionDeniedUnauthorized:
				renderUnauthorized(w, r, req.RequiredRole)
			default:
				logger.ErrorContext(r.Context(), "unknown access decision", "decision", ev.Decision.String())
				renderUnauthenticated(w, r, req.RedirectTarget)
			}
		})
	}
}

func renderPending(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		w.Header().Set("Retry-After", strconv.Itoa(pendingRefreshSeconds))
		WriteJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
		return
	}
	w.Header().Set("Refresh", strconv.Itoa(pendingRefreshSeconds))
	renderPage(w, r, http.StatusOK, "loading", pageData{Title: "Loading"})
}

func renderUnauthenticated(w http.ResponseWriter, r *http.Request, target string) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	current := r.URL.RequestURI()
	if IsHTMX(r) {
		// htmx targets a fragment endpoint; return to the page the browser shows.
		if p := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); p != "" {
			current = p
		}
	}
	NewResponseNavigator(w, r).Replace(loginRedirectURL(target, current))
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request, role domainauth.Role) {
	if !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusForbidden, map[string]string{
			"error":         "insufficient_permissions",
			"message":       "insufficient permissions",
			"required_role": role.String(),
		})
		return
	}
	renderPage(w, r, http.StatusForbidden, "denied", pageData{Title: "Access denied", RequiredRole: role.String()})
}

// loginRedirectURL appends redirect_uri=<current> to the target so the login
// flow can return the actor where they started.
func loginRedirectURL(target, current string) string {
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: domainauth.DefaultRedirectTarget}
	}
	q := u.Query()
	q.Set("redirect_uri", safeRedirectPath(current))
	u.RawQuery = q.Encode()
	return u.String()
}

// ResponseNavigator performs replace-navigation on an HTTP response: a 303 for
// plain browser requests and Hx-Redirect for htmx, so no history entry is added.
type ResponseNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

var _ ports.Navigator = (*ResponseNavigator)(nil)

// NewResponseNavigator binds a navigator to one response.
func NewResponseNavigator(w http.ResponseWriter, r *http.Request) *ResponseNavigator {
	return &ResponseNavigator{w: w, r: r}
}

// Replace redirects to path.
func (n *ResponseNavigator) Replace(path string) {
	if IsHTMX(n.r) {
		SetHXRedirect(n.w, path)
		n.w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

// AccessHandlers serves the client-side route guard endpoint.
type AccessHandlers struct {
	Checker AccessChecker
	Wait    time.Duration
}

type accessResponse struct {
	Decision     domainauth.Decision `json:"decision"`
	RequiredRole string              `json:"required_role"`
	RedirectTo   string              `json:"redirect_to,omitempty"`
	Role         string              `json:"role,omitempty"`
	Override     bool                `json:"override_active"`
}

// Check reports the decision for the role named in the query.
// GET /api/access?role=<role>&redirect_uri=<path>.
func (h *AccessHandlers) Check(w http.ResponseWriter, r *http.Request) {
	role, err := domainauth.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_role", Err: err, Field: "role"})
		return
	}
	req := domainauth.AccessRequest{RequiredRole: role, Credential: credentialFromRequest(r)}.Normalize()

	wait := h.Wait
	if wait <= 0 {
		wait = DefaultAccessWait
	}
	ev := h.Checker.Await(r.Context(), guardKey(req.Credential, "api:"+role.String()), req, wait)

	resp := accessResponse{
		Decision:     ev.Decision,
		RequiredRole: role.String(),
		Override:     ev.OverrideActive,
	}
	if ev.Role != domainauth.RoleNone {
		resp.Role = ev.Role.String()
	}
	if ev.Decision == domainauth.DecisionDeniedUnauthenticated {
		resp.RedirectTo = loginRedirectURL(req.RedirectTarget, safeRedirectPath(r.URL.Query().Get("redirect_uri")))
	}
	WriteJSON(w, http.StatusOK, resp)
}
