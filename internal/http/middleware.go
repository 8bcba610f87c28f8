package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
)

const (
	// SessionCookieName is the cookie carrying the server-side session id.
	SessionCookieName = "session_id"
	// QuickLoginCookieName is the cookie binding quick-login flags to one client.
	QuickLoginCookieName = "quick_login"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// browserRequestKey is an unexported context key type for browser request detection.
type browserRequestKey struct{}

// BrowserDetection returns a middleware that detects browser requests vs API requests.
// Downstream handlers use IsBrowserRequest to choose between HTML and JSON responses.
func BrowserDetection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest returns true if the current request is from a browser.
func IsBrowserRequest(r *http.Request) bool {
	if isBrowser, ok := r.Context().Value(browserRequestKey{}).(bool); ok {
		return isBrowser
	}
	return isBrowserRequest(r)
}

// isBrowserRequest treats /api/ routes as API calls, htmx as browser, and
// otherwise looks for text/html in Accept. A missing Accept header counts as a browser.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// credentialFromRequest extracts the session cookie, bearer token and quick-login client id.
func credentialFromRequest(r *http.Request) domainauth.Credential {
	var cred domainauth.Credential
	if c, err := r.Cookie(SessionCookieName); err == nil {
		cred.SessionID = c.Value
	}
	cred.QuickLoginID = quickLoginClientID(r)
	if h := r.Header.Get("Authorization"); len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		cred.BearerToken = strings.TrimSpace(h[len("Bearer "):])
	}
	return cred
}

func quickLoginClientID(r *http.Request) string {
	if c, err := r.Cookie(QuickLoginCookieName); err == nil {
		return c.Value
	}
	return ""
}

// guardKey identifies the polling client for superseding in-flight checks on
// GET /api/access. Requests without a credential share no guard.
func guardKey(cred domainauth.Credential, area string) string {
	switch {
	case cred.SessionID != "":
		return "s:" + cred.SessionID + "|" + area
	case cred.BearerToken != "":
		return "b:" + cred.BearerToken + "|" + area
	case cred.QuickLoginID != "":
		return "q:" + cred.QuickLoginID + "|" + area
	}
	return ""
}
