package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/salespage/chatkit/cache"
	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/logging"
)

// Options configure a Store.
type Options struct {
	// MaxMessages bounds the message count per session; oldest dropped first.
	MaxMessages int
	// MaxSessions bounds resident sessions tracked by this process.
	MaxSessions int
	// EvictionBuffer is the over-eviction margin: an eviction pass removes
	// down to MaxSessions-EvictionBuffer, amortizing its cost across future
	// inserts instead of evicting one session at a time.
	EvictionBuffer int
	// Logger defaults to NoOp.
	Logger logging.Logger
	// Clock overrides time.Now, for eviction tests.
	Clock func() time.Time
}

// Store is the conversation log service. Safe for concurrent use; appends
// to the same session are serialized, operations on different sessions
// proceed in parallel.
type Store struct {
	cache *cache.Store
	opts  Options

	mu       sync.Mutex
	locks    map[string]*sync.Mutex // per-session locks; entries are never removed
	activity map[string]time.Time   // sessionID -> lastActivity (process-local index)
}

// New creates a Store over the given cache store. The cache store should be
// configured with the conversation namespace and its 24h default TTL.
// Defaults: 50 messages per session, 100 sessions, eviction buffer 10.
func New(cs *cache.Store, optFns ...func(o *Options)) *Store {
	opts := Options{
		MaxMessages:    50,
		MaxSessions:    100,
		EvictionBuffer: 10,
		Logger:         logging.NoOpLogger{},
		Clock:          time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.EvictionBuffer >= opts.MaxSessions {
		opts.EvictionBuffer = 0
	}
	return &Store{
		cache:    cs,
		opts:     opts,
		locks:    make(map[string]*sync.Mutex),
		activity: make(map[string]time.Time),
	}
}

// sessionLock returns the mutex serializing mutations for one session. A
// session's mutex must outlive any goroutine that may hold or wait on it,
// so entries are never deleted from the map; a replacement mutex would let
// two read-modify-writes on the same session run concurrently.
func (s *Store) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// Append adds a timestamped message to the session's log, truncating to the
// newest MaxMessages, and rewrites the record with the namespace TTL.
// Returns false for empty identifiers or when the backing store rejects the
// write; it never returns an error.
func (s *Store) Append(ctx context.Context, sessionID, role, content string) bool {
	if sessionID == "" || content == "" {
		return false
	}
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	now := s.opts.Clock()
	var rec core.ConversationRecord
	if !s.cache.GetJSON(ctx, sessionID, &rec) {
		rec = core.ConversationRecord{SessionID: sessionID, CreatedAt: now}
	}
	rec.Messages = append(rec.Messages, core.Message{Role: role, Content: content, Timestamp: now})
	if len(rec.Messages) > s.opts.MaxMessages {
		rec.Messages = rec.Messages[len(rec.Messages)-s.opts.MaxMessages:]
	}
	rec.LastActivity = now

	if !s.cache.SetJSON(ctx, sessionID, rec, 0) {
		s.opts.Logger.Warn("conversation append rejected", "session_id", sessionID)
		return false
	}

	s.mu.Lock()
	s.activity[sessionID] = now
	overflow := len(s.activity) > s.opts.MaxSessions
	s.mu.Unlock()
	if overflow {
		s.evictOldest(ctx)
	}
	return true
}

// History returns the session's messages in append order. Never nil; absent
// sessions and degraded backends yield an empty slice.
func (s *Store) History(ctx context.Context, sessionID string) []core.Message {
	if sessionID == "" {
		return []core.Message{}
	}
	var rec core.ConversationRecord
	if !s.cache.GetJSON(ctx, sessionID, &rec) || rec.Messages == nil {
		return []core.Message{}
	}
	return rec.Messages
}

// Clear removes the session's log, reporting whether one existed. Takes the
// session lock so an in-flight Append cannot resurrect the cleared record.
func (s *Store) Clear(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	delete(s.activity, sessionID)
	s.mu.Unlock()
	return s.cache.Invalidate(ctx, sessionID)
}

// ActiveSessions enumerates session ids resident in the conversation
// namespace. On a shared backend this reflects all writers; when the
// backend is unreachable it falls back to this process's own index.
func (s *Store) ActiveSessions(ctx context.Context) []string {
	if keys := s.cache.Keys(ctx); keys != nil {
		return keys
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.activity))
	for id := range s.activity {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// evictOldest removes the oldest-by-lastActivity sessions until the
// resident count drops to MaxSessions-EvictionBuffer. O(n log n) per pass,
// acceptable at the session counts this store is bounded to.
func (s *Store) evictOldest(ctx context.Context) {
	type aged struct {
		id   string
		last time.Time
	}
	s.mu.Lock()
	if len(s.activity) <= s.opts.MaxSessions {
		s.mu.Unlock()
		return
	}
	all := make([]aged, 0, len(s.activity))
	for id, last := range s.activity {
		all = append(all, aged{id: id, last: last})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].last.Before(all[j].last) })
	target := s.opts.MaxSessions - s.opts.EvictionBuffer
	victims := all[:len(all)-target]
	for _, v := range victims {
		delete(s.activity, v.id)
	}
	s.mu.Unlock()

	for _, v := range victims {
		s.cache.Invalidate(ctx, v.id)
	}
	s.opts.Logger.Info("evicted idle sessions", "count", len(victims))
}
