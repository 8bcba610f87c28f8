// Package devauth provides a config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// Config controls the dev auth provider behavior. UserID and Email are required.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	CallbackPath    string        // default /auth/callback
	SessionDuration time.Duration // default 8h when zero
	Now             func() time.Time
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to our own callback with locally generated
// state and nonce; Exchange ignores the code and returns the configured identity.
type Provider struct {
	identity        domainauth.Identity
	callbackPath    string
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = 8 * time.Hour
	}
	callback := cfg.CallbackPath
	if callback == "" {
		callback = "/auth/callback"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			Email:     cfg.Email,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Provider:  domainauth.ProviderDev,
		},
		callbackPath:    callback,
		sessionDuration: dur,
		now:             now,
	}, nil
}

// Identity returns the configured dev identity.
func (p *Provider) Identity() domainauth.Identity { return p.identity }

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the dev identity with a fresh expiry. Code, state and nonce
// are validated by the callback handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	identity := p.identity
	identity.ExpiresAt = p.now().Add(p.sessionDuration)
	return identity, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
