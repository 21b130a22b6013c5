package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/salespage/chatkit/cache"
	"github.com/salespage/chatkit/core"
)

func newTestStore(optFns ...func(o *Options)) *Store {
	cs := cache.New(cache.NewMemoryBackend(), func(o *cache.Options) {
		o.Namespace = cache.NamespaceConversation
		o.DefaultTTL = 24 * time.Hour
	})
	return New(cs, optFns...)
}

func TestStore_AppendAndHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if !s.Append(ctx, "s1", core.RoleUser, "qual o preço?") {
		t.Fatalf("append rejected")
	}
	if !s.Append(ctx, "s1", core.RoleAssistant, "R$ 497,00") {
		t.Fatalf("append rejected")
	}

	h := s.History(ctx, "s1")
	if len(h) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(h))
	}
	if h[0].Role != core.RoleUser || h[1].Role != core.RoleAssistant {
		t.Fatalf("messages out of order: %+v", h)
	}
	if h[0].Timestamp.IsZero() {
		t.Fatalf("messages must be timestamped")
	}
}

func TestStore_EmptyInputsRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if s.Append(ctx, "", core.RoleUser, "oi") {
		t.Fatalf("empty session id must be rejected")
	}
	if s.Append(ctx, "s1", core.RoleUser, "") {
		t.Fatalf("empty content must be rejected")
	}
	if got := s.History(ctx, ""); got == nil || len(got) != 0 {
		t.Fatalf("history must be empty, never nil: %#v", got)
	}
}

func TestStore_TruncatesToNewest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(func(o *Options) { o.MaxMessages = 5 })

	for i := 0; i < 8; i++ {
		s.Append(ctx, "s1", core.RoleUser, fmt.Sprintf("m%d", i))
	}
	h := s.History(ctx, "s1")
	if len(h) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(h))
	}
	if h[0].Content != "m3" || h[4].Content != "m7" {
		t.Fatalf("expected newest window m3..m7, got %q..%q", h[0].Content, h[4].Content)
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.Append(ctx, "s1", core.RoleUser, "oi")
	if !s.Clear(ctx, "s1") {
		t.Fatalf("clear must report an existing session")
	}
	if len(s.History(ctx, "s1")) != 0 {
		t.Fatalf("history must be empty after clear")
	}
	if s.Clear(ctx, "s1") {
		t.Fatalf("clearing an absent session must report false")
	}
}

func TestStore_EvictsOldestSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(func(o *Options) {
		o.MaxSessions = 10
		o.EvictionBuffer = 3
		o.Clock = func() time.Time { return now }
	})

	// Sessions get strictly increasing last activity.
	for i := 0; i < 11; i++ {
		now = now.Add(time.Minute)
		s.Append(ctx, fmt.Sprintf("s%02d", i), core.RoleUser, "oi")
	}

	active := s.ActiveSessions(ctx)
	if len(active) != 7 {
		t.Fatalf("expected 10-3 sessions after eviction, got %d: %v", len(active), active)
	}
	// The oldest ones are gone, the newest survive.
	if len(s.History(ctx, "s00")) != 0 {
		t.Fatalf("oldest session must be evicted")
	}
	if len(s.History(ctx, "s10")) == 0 {
		t.Fatalf("newest session must survive")
	}
}

func TestStore_ConcurrentAppendsSameSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(func(o *Options) { o.MaxMessages = 200 })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				s.Append(ctx, "s1", core.RoleUser, fmt.Sprintf("w%d-%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	if got := len(s.History(ctx, "s1")); got != 100 {
		t.Fatalf("expected all 100 appends retained, got %d", got)
	}
}

func TestStore_SessionLockSurvivesClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	s.Append(ctx, "s1", core.RoleUser, "oi")

	l := s.sessionLock("s1")
	l.Lock()

	appended := make(chan bool, 1)
	go func() { appended <- s.Append(ctx, "s1", core.RoleUser, "segunda") }()
	cleared := make(chan bool, 1)
	go func() { cleared <- s.Clear(ctx, "s1") }()

	// With the session lock held, neither mutation may proceed.
	select {
	case <-appended:
		t.Fatalf("append must wait for the session lock")
	case <-cleared:
		t.Fatalf("clear must wait for the session lock")
	case <-time.After(50 * time.Millisecond):
	}

	l.Unlock()
	<-appended
	<-cleared

	if s.sessionLock("s1") != l {
		t.Fatalf("clear must not replace the session lock")
	}
}

func TestStore_SessionLockSurvivesEviction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(func(o *Options) {
		o.MaxSessions = 3
		o.EvictionBuffer = 1
	})

	s.Append(ctx, "victim", core.RoleUser, "oi")
	l := s.sessionLock("victim")
	for i := 0; i < 4; i++ {
		s.Append(ctx, fmt.Sprintf("s%d", i), core.RoleUser, "oi")
	}
	if len(s.History(ctx, "victim")) != 0 {
		t.Fatalf("oldest session must be evicted")
	}
	if s.sessionLock("victim") != l {
		t.Fatalf("eviction must not replace the session lock")
	}
}

func TestStore_ActiveSessionsSorted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	s.Append(ctx, "beta", core.RoleUser, "oi")
	s.Append(ctx, "alfa", core.RoleUser, "oi")

	active := s.ActiveSessions(ctx)
	if len(active) != 2 || active[0] != "alfa" || active[1] != "beta" {
		t.Fatalf("expected sorted ids, got %v", active)
	}
}
