package httpx

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// Values above maxLimit are clamped to maxLimit.
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	maxLimit = max(maxLimit, 1)
	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	return min(max(lim, 1), maxLimit), max(off, 0)
}

// parseBoolQuery reads a boolean query param; absent or malformed values yield def.
func parseBoolQuery(r *http.Request, key string, def bool) bool {
	if v := r.URL.Query().Get(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute or scheme-relative URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") || strings.HasPrefix(candidate, "/\\") {
		return "/"
	}
	return candidate
}

// safeRedirectFromURL reduces an absolute or relative URL to a safe in-app path.
// It returns "" when raw cannot be used.
func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}

// isSecureRequest reports whether the request arrived over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
