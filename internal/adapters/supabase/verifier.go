// Package supabase verifies Supabase Auth access tokens.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid supabase access token")

// Config configures a Verifier.
type Config struct {
	Secret   string // project JWT secret (HS256)
	Issuer   string // e.g. https://<ref>.supabase.co/auth/v1
	Audience string // usually "authenticated"
	Leeway   time.Duration
	Now      func() time.Time
}

// Verifier validates HS256 access tokens issued by Supabase Auth.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

var _ ports.TokenVerifier = (*Verifier)(nil)

// Claims are the Supabase access token claims used to build an identity.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	UserMetadata userMetadata `json:"user_metadata"`
}

type userMetadata struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// NewVerifier creates a Verifier. Secret and Issuer are required.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("supabase jwt secret is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("supabase issuer is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify parses rawToken and maps its claims onto an Identity that expires with the token.
func (v *Verifier) Verify(_ context.Context, rawToken string) (domainauth.Identity, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(strings.TrimSpace(rawToken), &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return domainauth.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	first, last := claims.UserMetadata.FirstName, claims.UserMetadata.LastName
	if first == "" && last == "" && claims.UserMetadata.FullName != "" {
		first, last, _ = strings.Cut(strings.TrimSpace(claims.UserMetadata.FullName), " ")
	}

	identity := domainauth.Identity{
		UserID:    claims.Subject,
		Email:     strings.ToLower(claims.Email),
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		Provider:  domainauth.ProviderSupabase,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
