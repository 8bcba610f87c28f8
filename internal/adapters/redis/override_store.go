package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// DefaultOverridePrefix prefixes the per-client hash holding quick-login flags.
const DefaultOverridePrefix = "thankyoudoc:quick_login:"

const defaultOverrideTimeout = 500 * time.Millisecond

// OverrideStore keeps each client's quick-login flags in its own Redis hash so
// every instance of the service sees the same override.
type OverrideStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.OverrideStore = (*OverrideStore)(nil)

// OverrideStoreOptions configures NewOverrideStore.
type OverrideStoreOptions struct {
	KeyPrefix string        // defaults to DefaultOverridePrefix
	TTL       time.Duration // zero keeps entries until cleared
	Timeout   time.Duration // per-call bound for Load and Save
	Logger    *slog.Logger
}

// NewOverrideStore creates a Redis-backed override store.
func NewOverrideStore(client redis.UniversalClient, opts OverrideStoreOptions) *OverrideStore {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultOverridePrefix
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOverrideTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OverrideStore{
		client:  client,
		prefix:  prefix,
		ttl:     max(opts.TTL, 0),
		timeout: timeout,
		logger:  logger.With("component", "override_store", "backend", "redis"),
	}
}

func (s *OverrideStore) key(clientID string) string { return s.prefix + clientID }

// Load reads both flags for the client. A missing hash or a Redis failure
// yields the zero override.
func (s *OverrideStore) Load(clientID string) domainauth.QuickLoginOverride {
	if clientID == "" {
		return domainauth.QuickLoginOverride{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	vals, err := s.client.HMGet(ctx, s.key(clientID), domainauth.OverrideKeySuperAdmin, domainauth.OverrideKeyAdmin).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "load quick login override failed", "error", err)
		return domainauth.QuickLoginOverride{}
	}
	return domainauth.QuickLoginOverride{
		IsSuperAdmin: flagValue(vals, 0),
		IsAdmin:      flagValue(vals, 1),
	}
}

// Save writes both flags for the client. Clearing both deletes the hash.
func (s *OverrideStore) Save(clientID string, o domainauth.QuickLoginOverride) error {
	if clientID == "" {
		return ports.ErrOverrideClientRequired
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(clientID)
	if !o.Active() {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			domainauth.OverrideKeySuperAdmin, strconv.FormatBool(o.IsSuperAdmin),
			domainauth.OverrideKeyAdmin, strconv.FormatBool(o.IsAdmin),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func flagValue(vals []any, i int) bool {
	if i >= len(vals) {
		return false
	}
	s, ok := vals[i].(string)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
