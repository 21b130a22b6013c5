package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/logging"
)

// Well-known key namespaces. Each Store owns exactly one namespace; the
// backend may be shared with other stores and other processes.
const (
	NamespacePage         = "page_data"
	NamespaceConversation = "conversation"
)

// entry is the serialized envelope stored under every key. Expiry is
// decided from CreatedAt+TTL on read so a backend without native TTL
// support behaves identically to one with it.
type entry struct {
	Value      json.RawMessage `json:"value"`
	CreatedAt  time.Time       `json:"created_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= time.Duration(e.TTLSeconds)*time.Second
}

// Stats summarizes the entries resident in a store's namespace.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

// Options configure a Store.
type Options struct {
	// Namespace prefixes every key written through this store.
	Namespace string
	// DefaultTTL applies when Set is called without an explicit ttl.
	DefaultTTL time.Duration
	// ProbeTimeout bounds the liveness probe before each backend operation.
	ProbeTimeout time.Duration
	// Logger for degradation and hit/miss events. Defaults to NoOp.
	Logger logging.Logger
	// Clock overrides time.Now, for expiry tests.
	Clock func() time.Time
}

// Store is a TTL-bounded key/value cache over a core.Backend. All methods
// are safe for concurrent use (concurrency control is delegated to the
// backend) and none of them ever returns an error: backend failures
// degrade to miss/false outcomes.
type Store struct {
	backend  core.Backend
	opts     Options
	degraded atomic.Bool
}

// New creates a Store over the given backend. Defaults: namespace
// "page_data", 1h TTL, 5s probe timeout, NoOp logger.
func New(backend core.Backend, optFns ...func(o *Options)) *Store {
	opts := Options{
		Namespace:    NamespacePage,
		DefaultTTL:   time.Hour,
		ProbeTimeout: 5 * time.Second,
		Logger:       logging.NoOpLogger{},
		Clock:        time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{backend: backend, opts: opts}
}

// Fingerprint derives the deterministic cache key for a source identity
// such as a URL. Identical identities always map to the same key; distinct
// identities do not collide in practice (sha256).
func Fingerprint(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])
}

// Namespace returns the store's key namespace.
func (s *Store) Namespace() string { return s.opts.Namespace }

// DefaultTTL returns the ttl applied when Set is called without one.
func (s *Store) DefaultTTL() time.Duration { return s.opts.DefaultTTL }

func (s *Store) key(k string) string { return s.opts.Namespace + ":" + k }

// available probes the backend before a remote operation. On probe failure
// the store marks itself degraded and attempts one reconnect probe; if that
// also fails the caller must turn the operation into a safe no-op.
func (s *Store) available(ctx context.Context) bool {
	probe := func() bool {
		pctx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
		defer cancel()
		return s.backend.Ping(pctx)
	}
	if probe() {
		if s.degraded.Swap(false) {
			s.opts.Logger.Info("cache backend recovered", "namespace", s.opts.Namespace)
		}
		return true
	}
	if !s.degraded.Swap(true) {
		s.opts.Logger.Warn("cache backend unreachable, attempting reconnect",
			"namespace", s.opts.Namespace)
	}
	if probe() {
		s.degraded.Store(false)
		return true
	}
	return false
}

// Get returns the cached value for key if present and unexpired. Expired
// entries are purged before reporting a miss. Backend failures report a
// miss, never an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if key == "" || !s.available(ctx) {
		return nil, false
	}
	raw, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		if err != core.ErrKeyNotFound {
			s.opts.Logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Unreadable envelope (foreign writer or corruption): drop it.
		_, _ = s.backend.Delete(ctx, s.key(key))
		return nil, false
	}
	if e.expired(s.opts.Clock()) {
		_, _ = s.backend.Delete(ctx, s.key(key))
		s.opts.Logger.Debug("cache expired", "namespace", s.opts.Namespace, "key", key)
		return nil, false
	}
	s.opts.Logger.Debug("cache hit", "namespace", s.opts.Namespace, "key", key)
	return e.Value, true
}

// Set stores value under key, overwriting any prior entry. A zero ttl uses
// the store default. Reports whether the write was accepted.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if key == "" || !s.available(ctx) {
		return false
	}
	if ttl <= 0 {
		ttl = s.opts.DefaultTTL
	}
	e := entry{
		Value:      json.RawMessage(value),
		CreatedAt:  s.opts.Clock(),
		TTLSeconds: int64(ttl / time.Second),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		s.opts.Logger.Warn("cache envelope encode failed", "key", key, "error", err)
		return false
	}
	if err := s.backend.Set(ctx, s.key(key), raw, ttl); err != nil {
		s.opts.Logger.Warn("cache set failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		s.opts.Logger.Warn("cache value encode failed", "key", key, "error", err)
		return false
	}
	return s.Set(ctx, key, raw, ttl)
}

// GetJSON reads key and unmarshals the value into v.
func (s *Store) GetJSON(ctx context.Context, key string, v any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.opts.Logger.Warn("cache value decode failed", "key", key, "error", err)
		return false
	}
	return true
}

// Invalidate removes key from the store. Reports whether an entry was
// actually removed.
func (s *Store) Invalidate(ctx context.Context, key string) bool {
	if key == "" || !s.available(ctx) {
		return false
	}
	removed, err := s.backend.Delete(ctx, s.key(key))
	if err != nil {
		s.opts.Logger.Warn("cache delete failed", "key", key, "error", err)
		return false
	}
	return removed
}

// Clear removes every entry in the store's namespace.
func (s *Store) Clear(ctx context.Context) {
	if !s.available(ctx) {
		return
	}
	keys, err := s.backend.Keys(ctx, s.opts.Namespace+":")
	if err != nil {
		s.opts.Logger.Warn("cache clear failed", "error", err)
		return
	}
	for _, k := range keys {
		_, _ = s.backend.Delete(ctx, k)
	}
}

// Keys lists the bare (namespace-stripped) keys resident in the namespace,
// expired entries included. Used by the conversation store to enumerate
// active sessions on a shared backend.
func (s *Store) Keys(ctx context.Context) []string {
	if !s.available(ctx) {
		return nil
	}
	prefix := s.opts.Namespace + ":"
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		s.opts.Logger.Warn("cache keys failed", "error", err)
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(prefix):])
	}
	return out
}

// Stats counts total, valid and expired entries in the namespace. Expired
// entries are counted, not purged; use Sweep for that.
func (s *Store) Stats(ctx context.Context) Stats {
	var st Stats
	if !s.available(ctx) {
		return st
	}
	keys, err := s.backend.Keys(ctx, s.opts.Namespace+":")
	if err != nil {
		s.opts.Logger.Warn("cache stats failed", "error", err)
		return st
	}
	now := s.opts.Clock()
	for _, k := range keys {
		raw, err := s.backend.Get(ctx, k)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		st.TotalEntries++
		if e.expired(now) {
			st.ExpiredEntries++
		} else {
			st.ValidEntries++
		}
	}
	return st
}

// Sweep removes every expired entry in the namespace and returns the count
// removed. Safe to run concurrently with reads and writes: it only removes
// entries already past their TTL, a monotonic, idempotent condition.
func (s *Store) Sweep(ctx context.Context) int {
	if !s.available(ctx) {
		return 0
	}
	keys, err := s.backend.Keys(ctx, s.opts.Namespace+":")
	if err != nil {
		return 0
	}
	now := s.opts.Clock()
	removed := 0
	for _, k := range keys {
		raw, err := s.backend.Get(ctx, k)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil || e.expired(now) {
			if ok, _ := s.backend.Delete(ctx, k); ok {
				removed++
			}
		}
	}
	if removed > 0 {
		s.opts.Logger.Info("cache sweep removed expired entries",
			"namespace", s.opts.Namespace, "removed", removed)
	}
	return removed
}
