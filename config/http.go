package config

import (
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://thankyoudoc.in").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CookieSecure marks session cookies Secure. Disable only for plain-HTTP local dev.
	CookieSecure bool `env:"APP_COOKIE_SECURE" envDefault:"true"`

	// AccessWait is how long a protected request waits for an access decision
	// before the pending response is sent.
	AccessWait time.Duration `env:"HTTP_ACCESS_WAIT" envDefault:"3s"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
	if h.AccessWait < 0 {
		h.AccessWait = 0
	}
	if h.AccessWait > 30*time.Second {
		h.AccessWait = 30 * time.Second
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// sanitizeCookieDomain drops domains that browsers would reject: bare public
// suffixes like "co.in" or "vercel.app".
func sanitizeCookieDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, ".")
	if d == "" || d == "localhost" {
		return d
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return ""
	}
	return d
}
