package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// CacheRepository defines the interface for caching operations.
// The core defines the interface and the data layer provides the Redis implementation.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// noRoleMarker is cached for users without a user_roles record.
const noRoleMarker = "-"

// RoleCacheConfig holds configuration for role caching.
type RoleCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultRoleCacheConfig returns a RoleCacheConfig with sensible defaults.
func DefaultRoleCacheConfig() RoleCacheConfig {
	return RoleCacheConfig{TTL: 30 * time.Second}
}

// RoleCacheServiceOptions bundles dependencies for NewRoleCacheService.
type RoleCacheServiceOptions struct {
	Cache  CacheRepository // optional; nil disables caching
	Roles  RoleRepository
	Config RoleCacheConfig
	Logger *slog.Logger
}

// RoleCacheService is the Role Directory backed by user_roles with a short-lived
// read-through cache. Concurrent misses for one user share a single database read.
// Writes go straight to the repository and invalidate the cached entry.
type RoleCacheService struct {
	cache  CacheRepository
	roles  RoleRepository
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

var (
	_ ports.RoleDirectory = (*RoleCacheService)(nil)
	_ ports.RoleAssigner  = (*RoleCacheService)(nil)
)

// NewRoleCacheService creates a new RoleCacheService.
func NewRoleCacheService(opts RoleCacheServiceOptions) *RoleCacheService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = DefaultRoleCacheConfig().TTL
	}
	return &RoleCacheService{
		cache:  opts.Cache,
		roles:  opts.Roles,
		ttl:    ttl,
		logger: logger.With("component", "role_cache"),
	}
}

// RoleFor returns the role assigned to identity. It returns ports.ErrRoleNotFound
// when the user has no record. Cache failures fall through to the repository.
func (s *RoleCacheService) RoleFor(ctx context.Context, identity domainauth.Identity) (domainauth.Role, error) {
	userID := identity.UserID
	if userID == "" {
		return domainauth.RoleNone, ports.ErrRoleNotFound
	}

	if role, ok, err := s.cached(ctx, userID); ok {
		return role, err
	}

	v, err, _ := s.group.Do(userID, func() (any, error) {
		role, getErr := s.roles.Get(ctx, userID)
		switch {
		case getErr == nil:
			s.store(ctx, userID, string(role))
		case errors.Is(getErr, ports.ErrRoleNotFound):
			s.store(ctx, userID, noRoleMarker)
		}
		return role, getErr
	})
	if err != nil {
		return domainauth.RoleNone, err
	}
	role, _ := v.(domainauth.Role)
	return role, nil
}

// Assign sets the role for a user and drops any cached value.
func (s *RoleCacheService) Assign(
	ctx context.Context,
	userID string,
	role domainauth.Role,
) (ports.RoleAssignment, error) {
	if !role.Valid() {
		return ports.RoleAssignment{}, fmt.Errorf("invalid role %q", role)
	}
	out, err := s.roles.Upsert(ctx, userID, role)
	if err != nil {
		return ports.RoleAssignment{}, err
	}
	s.Invalidate(ctx, userID)
	return out, nil
}

// Revoke removes the user's role record. Revoking an absent record returns ports.ErrRoleNotFound.
func (s *RoleCacheService) Revoke(ctx context.Context, userID string) error {
	deleted, err := s.roles.Delete(ctx, userID)
	if err != nil {
		return err
	}
	s.Invalidate(ctx, userID)
	if !deleted {
		return ports.ErrRoleNotFound
	}
	return nil
}

// List returns role records with pagination.
func (s *RoleCacheService) List(ctx context.Context, limit, offset int) ([]ports.RoleAssignment, error) {
	return s.roles.List(ctx, limit, offset)
}

// Invalidate removes the cached role for userID.
func (s *RoleCacheService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	s.group.Forget(userID)
	if _, err := s.cache.Delete(ctx, roleKey(userID)); err != nil {
		s.logger.WarnContext(ctx, "role cache invalidate failed", "user_id", userID, "error", err)
	}
}

// cached reads the cache. ok is false on miss or cache failure.
func (s *RoleCacheService) cached(ctx context.Context, userID string) (domainauth.Role, bool, error) {
	if s.cache == nil {
		return domainauth.RoleNone, false, nil
	}
	b, err := s.cache.Get(ctx, roleKey(userID))
	if err != nil {
		s.logger.DebugContext(ctx, "role cache read failed", "user_id", userID, "error", err)
		return domainauth.RoleNone, false, nil
	}
	if len(b) == 0 {
		return domainauth.RoleNone, false, nil
	}
	if string(b) == noRoleMarker {
		return domainauth.RoleNone, true, ports.ErrRoleNotFound
	}
	role, err := domainauth.ParseRole(string(b))
	if err != nil {
		// Unreadable entries are treated as a miss and overwritten by the next store.
		return domainauth.RoleNone, false, nil
	}
	return role, true, nil
}

func (s *RoleCacheService) store(ctx context.Context, userID, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, roleKey(userID), []byte(value), s.ttl); err != nil {
		s.logger.DebugContext(ctx, "role cache write failed", "user_id", userID, "error", err)
	}
}

// roleKey generates a cache key for a user's role.
func roleKey(userID string) string {
	return "role:user:" + userID
}
