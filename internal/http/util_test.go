package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 1, 0},
		{"?limit=9999", 200, 0},
		{"?limit=abc&offset=-5", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/doctors"+tt.query, nil)
			limit, offset := ParseLimitOffset(r, 50, 200)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"":                       "/",
		"/admin/doctors":         "/admin/doctors",
		"/appointments?status=x": "/appointments?status=x",
		"https://evil.example/":  "/",
		"//evil.example/path":    "/",
		"/\\evil.example":        "/",
		"relative/path":          "/",
		"javascript:alert(1)":    "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), in)
	}
}

func TestSafeRedirectFromURL(t *testing.T) {
	assert.Equal(t, "/admin?tab=1", safeRedirectFromURL("https://app.example/admin?tab=1"))
	assert.Equal(t, "/admin", safeRedirectFromURL("/admin"))
	assert.Empty(t, safeRedirectFromURL(""))
	assert.Empty(t, safeRedirectFromURL("//evil.example/x"))
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/login?redirect_uri=%2Fadmin%2Fdoctors", loginRedirectURL("/login", "/admin/doctors"))
	assert.Equal(t, "/signin?next=1&redirect_uri=%2F", loginRedirectURL("/signin?next=1", "https://evil.example"))
	assert.Equal(t, "/login?redirect_uri=%2Fx", loginRedirectURL("https://evil.example/login", "/x"))
}

func TestCredentialFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	r.AddCookie(&http.Cookie{Name: QuickLoginCookieName, Value: "ql-1"})
	r.Header.Set("Authorization", "bearer  tok-1 ")

	cred := credentialFromRequest(r)
	assert.Equal(t, "sess-1", cred.SessionID)
	assert.Equal(t, "tok-1", cred.BearerToken)
	assert.Equal(t, "ql-1", cred.QuickLoginID)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.True(t, credentialFromRequest(r).Empty())
}

func TestIsBrowserRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	r.Header.Set("Accept", "text/html")
	assert.False(t, IsBrowserRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.True(t, IsBrowserRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.Header.Set("Accept", "application/json")
	assert.False(t, IsBrowserRequest(r))

	r.Header.Set("Hx-Request", "true")
	assert.True(t, IsBrowserRequest(r))
}
