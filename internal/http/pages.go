package httpx

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | ThankYouDoc</title>
</head>
<body>{{end}}

{{define "foot"}}</body>
</html>{{end}}

{{define "loading"}}{{template "head" .}}
<main class="loading" aria-busy="true">
<p>Checking access&hellip;</p>
</main>
{{template "foot" .}}{{end}}

{{define "denied"}}{{template "head" .}}
<main class="access-denied">
<h1>Access denied</h1>
<p>This area requires the <strong>{{.RequiredRole}}</strong> role.</p>
<p><a href="/">Back to home</a></p>
</main>
{{template "foot" .}}{{end}}

{{define "login"}}{{template "head" .}}
<main class="login">
<h1>Sign in</h1>
<p><a href="/auth/login?redirect_uri={{.RedirectURI}}">Continue with Google</a></p>
{{if .QuickLogin}}
<form method="post" action="/auth/quick-login">
<input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
<label>Email <input type="email" name="email" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Demo login</button>
</form>
{{end}}
</main>
{{template "foot" .}}{{end}}

{{define "signed_out"}}{{template "head" .}}
<main class="signed-out">
<h1>Signed out</h1>
<p><a href="/login?redirect_uri={{.RedirectURI}}">Sign in again</a></p>
</main>
{{template "foot" .}}{{end}}
`))

type pageData struct {
	Title        string
	RequiredRole string
	RedirectURI  string
	QuickLogin   bool
}

// renderPage executes the named page into a buffer so a template failure never
// leaves a half-written response.
func renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Default().ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
