package httpx

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

const (
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "post_login_redirect"
	oauthCookieMaxAge  = 600 // 10 minutes
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	LoginWithToken(ctx context.Context, idToken string) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error

	QuickLoginEnabled() bool
	QuickLogin(ctx context.Context, input service.QuickLoginInput) (*service.QuickLoginResult, error)
	QuickLogout(ctx context.Context, clientID string) error
	QuickLoginStatus(clientID string) domainauth.QuickLoginOverride
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Roles        ports.RoleDirectory // optional; adds the role to /auth/status
	CookieDomain string
	// SecureCookies forces the Secure attribute even on plain-HTTP requests.
	SecureCookies bool
	Logger        *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginPage renders the sign-in page.
// GET /login?redirect_uri=<path>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "login", pageData{
		Title:       "Sign in",
		RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri")),
		QuickLogin:  h.Svc.QuickLoginEnabled(),
	})
}

// SignedOut renders the page shown after logout.
// GET /auth/signed-out?redirect_uri=<path>.
func (h *AuthHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, "signed_out", pageData{
		Title:       "Signed out",
		RedirectURI: safeRedirectPath(r.URL.Query().Get("redirect_uri")),
	})
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     errors.New("could not start login"),
		})
		return
	}

	h.setCookie(w, r, stateCookieName, result.State, oauthCookieMaxAge)
	h.setCookie(w, r, nonceCookieName, result.Nonce, oauthCookieMaxAge)
	h.setCookie(w, r, redirectCookieName, redirectURI, oauthCookieMaxAge)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if idpErr := q.Get("error"); idpErr != "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "idp_error",
			Err:     errors.New(idpErr),
		})
		return
	}
	code, state := q.Get("code"), q.Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Err:     errors.New("could not complete login"),
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, stateCookieName)
	h.clearCookie(w, r, nonceCookieName)

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

type firebaseLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Firebase exchanges a Firebase ID token for a server session.
// POST /auth/firebase {"id_token": "..."}.
func (h *AuthHandlers) Firebase(w http.ResponseWriter, r *http.Request) {
	var req firebaseLoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	result, err := h.Svc.LoginWithToken(r.Context(), req.IDToken)
	switch {
	case errors.Is(err, service.ErrTokenLoginUnavailable):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "token_login_unavailable", Err: err})
		return
	case err != nil:
		h.logger().WarnContext(r.Context(), "firebase login rejected", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "invalid_token",
			Err:     errors.New("id token could not be verified"),
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          userPayload(result.Session.Identity(), domainauth.RoleNone),
		"expires_at":    result.Session.ExpiresAt,
	})
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	h.clearCookie(w, r, SessionCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	u := url.URL{Path: "/auth/signed-out"}
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	u.RawQuery = q.Encode()
	signedOutURL := u.String()

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signedOutURL,
		})
		return
	}
	http.Redirect(w, r, signedOutURL, http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	override := h.Svc.QuickLoginStatus(quickLoginClientID(r))
	body := map[string]any{
		"authenticated": override.Active(),
		"quick_login":   override,
	}

	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, body)
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, body)
		return
	}

	identity := session.Identity()
	role := domainauth.RoleNone
	if h.Roles != nil {
		if resolved, roleErr := h.Roles.RoleFor(r.Context(), identity); roleErr == nil {
			role = resolved
		}
	}
	body["authenticated"] = true
	body["user"] = userPayload(identity, role)
	body["expires_at"] = session.ExpiresAt
	WriteJSON(w, http.StatusOK, body)
}

type quickLoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// QuickLogin sets a demo override flag after checking the demo account
// credentials. The flag is bound to this client through the quick-login cookie.
// POST /auth/quick-login with a JSON body or a form from the login page.
func (h *AuthHandlers) QuickLogin(w http.ResponseWriter, r *http.Request) {
	form := !isJSONBody(r)
	var req quickLoginRequest
	if form {
		if err := r.ParseForm(); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
			return
		}
		req = quickLoginRequest{
			Email:       r.PostFormValue("email"),
			Password:    r.PostFormValue("password"),
			RedirectURI: r.PostFormValue("redirect_uri"),
		}
	} else if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.QuickLogin(r.Context(), service.QuickLoginInput{
		ClientID: quickLoginClientID(r),
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, service.ErrQuickLoginDisabled):
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "quick_login_disabled", Err: err})
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: err})
		return
	case err != nil:
		h.logger().ErrorContext(r.Context(), "quick login failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "quick_login_failed",
			Err:     errors.New("could not save quick login"),
		})
		return
	}

	h.setCookie(w, r, QuickLoginCookieName, res.ClientID, int(service.DefaultQuickLoginTTL.Seconds()))
	if form {
		http.Redirect(w, r, safeRedirectPath(req.RedirectURI), http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, res.Override)
}

// QuickLogout clears the override flags of the calling client only.
// POST /auth/quick-logout.
func (h *AuthHandlers) QuickLogout(w http.ResponseWriter, r *http.Request) {
	clientID := quickLoginClientID(r)
	if clientID != "" {
		h.clearCookie(w, r, QuickLoginCookieName)
	}
	if err := h.Svc.QuickLogout(r.Context(), clientID); err != nil {
		h.logger().ErrorContext(r.Context(), "quick logout failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "quick_logout_failed",
			Err:     errors.New("could not clear quick login"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, domainauth.QuickLoginOverride{})
}

func userPayload(identity domainauth.Identity, role domainauth.Role) map[string]any {
	return map[string]any{
		"id":         identity.UserID,
		"first_name": identity.FirstName,
		"last_name":  identity.LastName,
		"email":      identity.Email,
		"provider":   identity.Provider,
		"role":       role.String(),
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		IsHTMX(r) ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

func isJSONBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// setCookie writes a short-lived HttpOnly cookie scoped to the site root.
func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.SecureCookies || isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	h.setCookie(w, r, SessionCookieName, s.ID, maxAge)
}

// clearCookie mirrors the attributes used when setting cookies so browsers drop them.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.SecureCookies || isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// postLoginRedirect returns the stored post-login path and clears its cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if c, err := r.Cookie(redirectCookieName); err == nil {
		redirectURI = safeRedirectPath(c.Value)
		h.clearCookie(w, r, redirectCookieName)
	}
	return redirectURI
}
