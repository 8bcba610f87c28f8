package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

const (
	// FirebaseIssuerPrefix prefixes the project id to form the ID token issuer.
	FirebaseIssuerPrefix = "https://securetoken.google.com/"
	// FirebaseJWKSURL serves the public keys Firebase signs ID tokens with.
	FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

// FirebaseConfig configures a FirebaseVerifier.
type FirebaseConfig struct {
	ProjectID  string
	JWKSURL    string        // Optional, defaults to FirebaseJWKSURL
	KeySet     gooidc.KeySet // Optional, overrides JWKSURL
	HTTPClient *http.Client  // Optional
	Now        func() time.Time
}

// FirebaseVerifier verifies Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	verifier *gooidc.IDTokenVerifier
}

var _ ports.TokenVerifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier builds a verifier checking issuer and audience against the project.
func NewFirebaseVerifier(ctx context.Context, cfg FirebaseConfig) (*FirebaseVerifier, error) {
	project := strings.TrimSpace(cfg.ProjectID)
	if project == "" {
		return nil, errors.New("firebase project id is required")
	}

	keySet := cfg.KeySet
	if keySet == nil {
		jwks := cfg.JWKSURL
		if jwks == "" {
			jwks = FirebaseJWKSURL
		}
		httpClient := cfg.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 10 * time.Second}
		}
		// The key set outlives ctx; it refreshes keys lazily on unknown key ids.
		keySet = gooidc.NewRemoteKeySet(gooidc.ClientContext(context.WithoutCancel(ctx), httpClient), jwks)
	}

	return &FirebaseVerifier{
		verifier: gooidc.NewVerifier(FirebaseIssuerPrefix+project, keySet, &gooidc.Config{
			ClientID:             project,
			SupportedSigningAlgs: []string{gooidc.RS256},
			Now:                  cfg.Now,
		}),
	}, nil
}

type firebaseClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Firebase struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// Verify checks the token signature, issuer, audience and expiry and maps its claims.
// The returned identity carries no expiry; the session lifetime is set by the caller.
func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (domainauth.Identity, error) {
	tok, err := v.verifier.Verify(ctx, strings.TrimSpace(rawToken))
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify firebase id token: %w", err)
	}
	var claims firebaseClaims
	if err := tok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse firebase claims: %w", err)
	}
	if claims.Sub == "" {
		return domainauth.Identity{}, errors.New("firebase token has no subject")
	}

	first, last := splitName(claims.Name)
	return domainauth.Identity{
		UserID:    claims.Sub,
		Email:     strings.ToLower(claims.Email),
		FirstName: first,
		LastName:  last,
		Provider:  domainauth.ProviderFirebase,
	}, nil
}

// splitName splits a display name at the first space.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
