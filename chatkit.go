// Package chatkit provides a high-level façade over the extraction,
// caching, retrieval and validation services that make up the sales-page
// chat pipeline. Most applications interact with this package by:
//  1. Creating a ChatKit via New() (optionally overriding the backend,
//     extractor or model)
//  2. Loading one or more pages (Extract)
//  3. Asking questions against a page (Ask), which drafts through the
//     model and gates every answer against the page's own content
//
// All defaults are safe for local development and testing: an in-memory
// cache backend, a mock model and a NoOp logger. Production deployments
// supply a Badger backend, a real model adapter and a structured logger.
package chatkit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salespage/chatkit/cache"
	"github.com/salespage/chatkit/conversation"
	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/extract"
	"github.com/salespage/chatkit/knowledge"
	"github.com/salespage/chatkit/logging"
	"github.com/salespage/chatkit/model"
	"github.com/salespage/chatkit/respond"
	"github.com/salespage/chatkit/validate"
)

// Options configures the ChatKit instance.
type Options struct {
	// Backend is the shared cache backend (defaults to in-memory).
	Backend core.Backend

	// Extractor fetches and parses sales pages (defaults to HTTP).
	Extractor core.Extractor

	// Model drafts answers (defaults to a mock for local development).
	Model model.Model

	// PageTTL bounds how long extracted pages stay cached.
	PageTTL time.Duration
	// ConversationTTL bounds how long idle conversations survive.
	ConversationTTL time.Duration

	// Conversation bounds.
	MaxMessages    int
	MaxSessions    int
	EvictionBuffer int

	// Retrieval and validation thresholds.
	MinScore         float64
	MaxContextLength int
	MinSources       int

	// Instructions are appended to every system prompt, if set.
	Instructions string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// pageState is the per-URL working set: the extracted record, its source
// texts and the validator built over them.
type pageState struct {
	data      core.PageData
	text      string
	markup    string
	validator *validate.Validator
}

// pageSnapshot is the cache envelope for an extracted page.
type pageSnapshot struct {
	Data   core.PageData `json:"data"`
	Text   string        `json:"text"`
	Markup string        `json:"markup,omitempty"`
}

// ChatKit is the high-level façade aggregating the pipeline services.
type ChatKit struct {
	opts          Options
	pages         *cache.Store
	conversations *conversation.Store
	index         *knowledge.Index
	extractor     core.Extractor
	generator     *respond.Generator

	mu    sync.RWMutex
	byURL map[string]*pageState
}

// New creates a new ChatKit instance with optional overrides. Any unset
// service is initialized with a local default.
func New(optFns ...func(o *Options)) *ChatKit {
	opts := Options{
		Backend:          cache.NewMemoryBackend(),
		Model:            model.NewMockModel(),
		PageTTL:          2 * time.Hour,
		ConversationTTL:  24 * time.Hour,
		MaxMessages:      50,
		MaxSessions:      100,
		EvictionBuffer:   10,
		MinScore:         0.1,
		MaxContextLength: 2000,
		MinSources:       2,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Extractor == nil {
		opts.Extractor = extract.New(func(o *extract.Options) {
			o.Logger = opts.Logger
		})
	}

	pages := cache.New(opts.Backend, func(o *cache.Options) {
		o.Namespace = cache.NamespacePage
		o.DefaultTTL = opts.PageTTL
		o.Logger = opts.Logger
	})
	conversationCache := cache.New(opts.Backend, func(o *cache.Options) {
		o.Namespace = cache.NamespaceConversation
		o.DefaultTTL = opts.ConversationTTL
		o.Logger = opts.Logger
	})
	conversations := conversation.New(conversationCache, func(o *conversation.Options) {
		o.MaxMessages = opts.MaxMessages
		o.MaxSessions = opts.MaxSessions
		o.EvictionBuffer = opts.EvictionBuffer
		o.Logger = opts.Logger
	})
	index := knowledge.New(func(o *knowledge.Options) {
		o.MinScore = opts.MinScore
		o.Logger = opts.Logger
	})
	generator := respond.New(opts.Model, func(o *respond.Options) {
		o.Logger = opts.Logger
	})

	return &ChatKit{
		opts:          opts,
		pages:         pages,
		conversations: conversations,
		index:         index,
		extractor:     opts.Extractor,
		generator:     generator,
		byURL:         make(map[string]*pageState),
	}
}

// markupExtractor is the optional upgrade an extractor can offer when it
// retains the raw markup alongside the flattened text.
type markupExtractor interface {
	ExtractWithMarkup(ctx context.Context, url string) (core.PageData, string, string, error)
}

// Extract returns the structured record for a sales page, serving from the
// cache when a fresh snapshot exists and extracting otherwise. Cached is
// true on a cache hit.
func (k *ChatKit) Extract(ctx context.Context, url string) (core.PageData, bool, error) {
	if url == "" {
		return core.PageData{}, false, fmt.Errorf("url is required")
	}
	key := cache.Fingerprint(url)

	var snap pageSnapshot
	if ok := k.pages.GetJSON(ctx, key, &snap); ok {
		k.ensureState(url, snap)
		return snap.Data, true, nil
	}

	snap, err := k.extract(ctx, url)
	if err != nil {
		return core.PageData{}, false, err
	}
	k.pages.SetJSON(ctx, key, snap, 0)
	k.ensureState(url, snap)
	return snap.Data, false, nil
}

func (k *ChatKit) extract(ctx context.Context, url string) (pageSnapshot, error) {
	if me, ok := k.extractor.(markupExtractor); ok {
		data, text, markup, err := me.ExtractWithMarkup(ctx, url)
		if err != nil {
			return pageSnapshot{}, err
		}
		return pageSnapshot{Data: data, Text: text, Markup: markup}, nil
	}
	data, text, err := k.extractor.Extract(ctx, url)
	if err != nil {
		return pageSnapshot{}, err
	}
	return pageSnapshot{Data: data, Text: text}, nil
}

// ensureState (re)builds the in-process working set for a page. The index
// and validators are process-local, so a cache hit after a restart still
// needs them rebuilt.
func (k *ChatKit) ensureState(url string, snap pageSnapshot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.byURL[url]; ok {
		return
	}
	k.index.AddDocument(snap.Data, snap.Text)
	k.byURL[url] = &pageState{
		data:   snap.Data,
		text:   snap.Text,
		markup: snap.Markup,
		validator: validate.New(snap.Text, snap.Data, snap.Markup, func(o *validate.Options) {
			o.MinSources = k.opts.MinSources
			o.Logger = k.opts.Logger
		}),
	}
}

func (k *ChatKit) state(url string) *pageState {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.byURL[url]
}

// Ask answers a visitor question about a page. The page is extracted (or
// served from cache) first; the draft is gated through the page's
// validator and the exchange is appended to the session's history. An
// empty sessionID starts a new session; the id used is always returned.
func (k *ChatKit) Ask(ctx context.Context, sessionID, url, question string) (respond.Reply, string, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	if _, _, err := k.Extract(ctx, url); err != nil {
		return respond.Reply{}, sessionID, err
	}
	st := k.state(url)
	if st == nil {
		return respond.Reply{}, sessionID, fmt.Errorf("no page state for %s", url)
	}

	reply := k.generator.Respond(ctx, respond.Exchange{
		Question:     question,
		Page:         st.data,
		Context:      k.index.ContextFor(question, k.opts.MaxContextLength),
		History:      k.conversations.History(ctx, sessionID),
		Instructions: k.opts.Instructions,
	}, st.validator)

	k.conversations.Append(ctx, sessionID, core.RoleUser, question)
	k.conversations.Append(ctx, sessionID, core.RoleAssistant, reply.Text)
	return reply, sessionID, nil
}

// Stats aggregates the pipeline's health counters.
type Stats struct {
	Cache          cache.Stats `json:"cache"`
	Documents      int         `json:"documents"`
	ActiveSessions int         `json:"active_sessions"`
	Model          model.Info  `json:"model"`
}

// Stats reports cache, index and conversation counters.
func (k *ChatKit) Stats(ctx context.Context) Stats {
	return Stats{
		Cache:          k.pages.Stats(ctx),
		Documents:      k.index.Len(),
		ActiveSessions: len(k.conversations.ActiveSessions(ctx)),
		Model:          k.opts.Model.Info(),
	}
}

// ClearSession drops a session's history. Reports whether one existed.
func (k *ChatKit) ClearSession(ctx context.Context, sessionID string) bool {
	return k.conversations.Clear(ctx, sessionID)
}

// InvalidatePage drops a page's cached snapshot so the next Extract
// refetches it.
func (k *ChatKit) InvalidatePage(ctx context.Context, url string) bool {
	return k.pages.Invalidate(ctx, cache.Fingerprint(url))
}

// Conversations exposes the conversation store, e.g. for HTTP handlers.
func (k *ChatKit) Conversations() *conversation.Store { return k.conversations }

// Index exposes the knowledge index.
func (k *ChatKit) Index() *knowledge.Index { return k.index }

// PageCache exposes the page cache store.
func (k *ChatKit) PageCache() *cache.Store { return k.pages }

// NewSessionID returns a fresh opaque session identifier.
func NewSessionID() string { return uuid.NewString() }
